package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/render"
	"github.com/fintrack-dev/fintrack/internal/session"
)

var validate = validator.New()

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to FinTrack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, env, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set FINTRACK_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set FINTRACK_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, env *Env, email, password string) error {
	// Environment variables are useful for scripts
	if email == "" {
		email = os.Getenv("FINTRACK_EMAIL")
	}
	if password == "" {
		password = os.Getenv("FINTRACK_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or FINTRACK_EMAIL env var)")
	}

	if password == "" {
		var err error
		if password, err = readPassword(env, "--password flag or FINTRACK_PASSWORD env var"); err != nil {
			return err
		}
	}

	req := apiclient.LoginRequest{Email: email, Password: password}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid login details: %w", err)
	}

	ctx := cmd.Context()
	// A 401 from login means bad credentials, so no re-login hint
	client := env.newClient(nil)

	resp, err := client.Users.Login(ctx, req)
	if errors.Is(err, apiclient.ErrSessionExpired) {
		return fmt.Errorf("login failed: invalid email or password")
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	auth, err := client.StartSession(ctx, resp)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(env.Out, "✓ Login successful!")
	fmt.Fprintf(env.Out, "  User: %s (%s)\n", auth.User.Name, auth.User.Email)
	return nil
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(env *Env) *cobra.Command {
	var req apiclient.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a FinTrack account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, env, req)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password, at least 6 characters (will prompt if not provided)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runRegister(cmd *cobra.Command, env *Env, req apiclient.RegisterRequest) error {
	if req.Password == "" {
		var err error
		if req.Password, err = readPassword(env, "--password flag"); err != nil {
			return err
		}
	}

	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid registration details: %w", err)
	}

	ctx := cmd.Context()
	client := env.newClient(nil)

	resp, err := client.Users.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	auth, err := client.StartSession(ctx, resp)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(env.Out, "✓ Welcome, %s! You are now logged in.\n", auth.User.Name)
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Auth().Logout(cmd.Context()); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			fmt.Fprintln(env.Out, "✓ Logged out")
			return nil
		},
	}
}

// NewStatusCmd creates the status command
func NewStatusCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, env)
		},
	}
}

func runStatus(cmd *cobra.Command, env *Env) error {
	ctx := cmd.Context()

	page := render.NewTerminalPage(env.Out, render.NavLinks, render.AuthLinks, render.LogoutButton, render.UserName)
	authenticated := env.Auth().Check(ctx, page)
	if err := page.Flush(); err != nil {
		return err
	}

	if !authenticated {
		return nil
	}

	sess, err := env.Store.Load(ctx)
	if err != nil {
		return nil
	}
	if line := tokenExpiry(sess, time.Now()); line != "" {
		fmt.Fprintln(env.Out, line)
	}
	return nil
}

// tokenExpiry describes the exp claim of the stored token. The token is
// decoded without verification and only for display.
func tokenExpiry(sess session.Session, now time.Time) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err != nil {
		return ""
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ""
	}

	if exp.Before(now) {
		return fmt.Sprintf("Token expired at %s", exp.Local().Format(time.RFC1123))
	}
	return fmt.Sprintf("Token expires at %s", exp.Local().Format(time.RFC1123))
}
