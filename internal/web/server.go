// Package web serves the FinTrack browser frontend.
//
// Pages are rendered server side from embedded templates. Each request gets
// its own cookie-backed session store, a request client bound to it and an
// auth state controller; navigation requested by either becomes a 303.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/health"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the web frontend
type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     zerolog.Logger
	services   apiclient.Services
	checker    *health.Checker
	poller     *health.Poller
	httpClient *http.Client
	version    string
}

// New creates a web frontend for cfg
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	checker := health.NewChecker(cfg.Health.Timeout, zlog)

	s := &Server{
		config:   cfg,
		logger:   zlog,
		services: apiclient.ServicesFromConfig(cfg.Services),
		checker:  checker,
		poller:   health.NewPoller(checker, health.DefaultServices(cfg.Health), zlog),
		version:  version,
	}

	s.setupRouter(tmpl)

	return s, nil
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// SetHTTPClient replaces the client used for backend and health requests
func (s *Server) SetHTTPClient(client *http.Client) {
	s.httpClient = client
	s.checker.SetHTTPClient(client)
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter(tmpl *template.Template) {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.GET("/healthz", s.healthz)
	s.router.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	api := s.router.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Web.AllowOrigins,
		AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	{
		api.GET("/health", s.apiHealth)
	}

	pages := s.router.Group("/")
	pages.Use(s.requestScope())
	{
		pages.GET("/", s.home)
		pages.GET("/login", s.loginForm)
		pages.POST("/login", s.login)
		pages.GET("/register", s.registerForm)
		pages.POST("/register", s.register)
		pages.POST("/logout", s.logout)
	}

	protected := pages.Group("/")
	protected.Use(s.requireAuth())
	{
		protected.GET("/dashboard", s.dashboard)
		protected.GET("/expenses", s.listExpenses)
		protected.POST("/expenses", s.createExpense)
		protected.POST("/expenses/:id", s.updateExpense)
		protected.POST("/expenses/:id/delete", s.deleteExpense)
		protected.GET("/reports", s.reports)
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Web.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("version", s.version).Msg("Starting web frontend")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("web frontend failed: %w", err)
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down web frontend")
		return err
	}

	s.logger.Info().Msg("Web frontend shutdown complete")
	return nil
}
