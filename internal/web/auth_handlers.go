package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
)

// LoginForm is the login form submission
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// RegisterForm is the registration form submission
type RegisterForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

const dashboardPath = "/dashboard"

func (s *Server) home(c *gin.Context) {
	s.poller.Run(c.Request.Context(), scopeOf(c).page)
	s.render(c, http.StatusOK, "home", view{Title: "FinTrack"})
}

func (s *Server) loginForm(c *gin.Context) {
	s.render(c, http.StatusOK, "login", view{Title: "Login", Form: LoginForm{}})
}

func (s *Server) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "login", view{
			Title: "Login",
			Form:  form,
			Error: "Please enter a valid email and password.",
		})
		return
	}

	sc := scopeOf(c)
	ctx := c.Request.Context()

	resp, err := sc.client.Users.Login(ctx, apiclient.LoginRequest{Email: form.Email, Password: form.Password})
	if errors.Is(err, apiclient.ErrSessionExpired) {
		// A 401 here means bad credentials, not an expired session
		sc.nav.reset()
		sc.auth.Check(ctx, sc.page)
		s.render(c, http.StatusUnauthorized, "login", view{
			Title: "Login",
			Form:  LoginForm{Email: form.Email},
			Error: "Invalid email or password.",
		})
		return
	}
	if err == nil {
		_, err = sc.client.StartSession(ctx, resp)
	}
	if err != nil {
		message, status, _ := s.backendFailure(c, err)
		s.render(c, status, "login", view{Title: "Login", Form: LoginForm{Email: form.Email}, Error: message})
		return
	}

	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (s *Server) registerForm(c *gin.Context) {
	s.render(c, http.StatusOK, "register", view{Title: "Register", Form: RegisterForm{}})
}

func (s *Server) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		form.Password = ""
		s.render(c, http.StatusBadRequest, "register", view{
			Title: "Register",
			Form:  form,
			Error: "Please fill in every field. Passwords need at least 6 characters.",
		})
		return
	}

	sc := scopeOf(c)
	ctx := c.Request.Context()

	resp, err := sc.client.Users.Register(ctx, apiclient.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	form.Password = ""
	if errors.Is(err, apiclient.ErrSessionExpired) {
		sc.nav.reset()
		sc.auth.Check(ctx, sc.page)
		s.render(c, http.StatusUnauthorized, "register", view{
			Title: "Register",
			Form:  form,
			Error: "Registration was rejected.",
		})
		return
	}
	if err == nil {
		_, err = sc.client.StartSession(ctx, resp)
	}
	if err != nil {
		message, status, _ := s.backendFailure(c, err)
		s.render(c, status, "register", view{Title: "Register", Form: form, Error: message})
		return
	}

	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (s *Server) logout(c *gin.Context) {
	sc := scopeOf(c)
	if err := sc.auth.Logout(c.Request.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Logout did not clear the session")
	}
	sc.nav.redirect(c)
}
