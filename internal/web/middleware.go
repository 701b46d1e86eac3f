package web

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/authstate"
	"github.com/fintrack-dev/fintrack/internal/render"
)

const scopeKey = "scope"

// scope is the per-request wiring shared by page handlers
type scope struct {
	store  *CookieStore
	nav    *redirector
	client *apiclient.Client
	auth   *authstate.Controller
	page   *render.MemoryPage
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// requestScope builds the session store, client and controller for a page
// request and runs the auth state check on the layout
func (s *Server) requestScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := NewCookieStore(c, s.config.Web.SecureCookies)
		nav := &redirector{}
		logger := s.logger.With().Str("path", c.Request.URL.Path).Logger()

		client := apiclient.New(s.services, store, nav, logger)
		if s.httpClient != nil {
			client.SetHTTPClient(s.httpClient)
		}

		sc := &scope{
			store:  store,
			nav:    nav,
			client: client,
			auth:   authstate.New(store, nav, logger),
			page:   render.NewLayoutPage(render.ServiceStatus),
		}
		sc.auth.Init(c.Request.Context(), sc.page)

		c.Set(scopeKey, sc)
		c.Next()
	}
}

// requireAuth sends signed out visitors to the login page
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := scopeOf(c)
		if !sc.auth.RequireAuth(c.Request.Context(), sc.page) {
			sc.nav.redirect(c)
			return
		}
		c.Next()
	}
}

func scopeOf(c *gin.Context) *scope {
	return c.MustGet(scopeKey).(*scope)
}
