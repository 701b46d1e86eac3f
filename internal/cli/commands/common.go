package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/authstate"
	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/render"
	"github.com/fintrack-dev/fintrack/internal/session"
)

var errNotLoggedIn = errors.New("not logged in. Please run 'fintrack login' first")

// Env carries what every command needs. The root command fills it in
// before any subcommand runs; tests build one directly.
type Env struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      session.Store
	Out        io.Writer
	HTTPClient *http.Client

	// Interactive reports whether prompts may be shown
	Interactive bool
}

// LoadEnv loads configuration and opens the configured session store
func LoadEnv(out io.Writer, logger zerolog.Logger) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := session.Open(cfg.Session.Backend, cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &Env{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Out:         out,
		Interactive: isTerminal(os.Stdin),
	}, nil
}

// Close releases the session store
func (e *Env) Close() error {
	if closer, ok := e.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Navigate turns page navigation into hints on the terminal
func (e *Env) Navigate(path string) {
	switch path {
	case render.LoginPath:
		fmt.Fprintln(e.Out, "Not logged in. Run 'fintrack login' to sign in.")
	case render.HomePath:
		e.Logger.Debug().Msg("Navigated home")
	}
}

// Client returns a request client bound to the session store
func (e *Env) Client() *apiclient.Client {
	return e.newClient(e)
}

// newClient builds a client that reports navigation to nav, which may be nil
func (e *Env) newClient(nav render.Navigator) *apiclient.Client {
	client := apiclient.New(apiclient.ServicesFromConfig(e.Config.Services), e.Store, nav, e.Logger)
	if e.HTTPClient != nil {
		client.SetHTTPClient(e.HTTPClient)
	}
	return client
}

// Auth returns an auth state controller bound to the session store
func (e *Env) Auth() *authstate.Controller {
	return authstate.New(e.Store, e, e.Logger)
}

// requireLogin fails early when there is no local session
func (e *Env) requireLogin(ctx context.Context) error {
	if !e.Auth().RequireAuth(ctx, nil) {
		return errNotLoggedIn
	}
	return nil
}

// decode reads a wrapper's response into v, annotating failures with action
func decode(action string, resp *http.Response, err error, v any) error {
	if err == nil {
		err = apiclient.DecodeJSON(resp, v)
	}
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return f != nil && termIsTerminal(int(f.Fd()))
}
