package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the FinTrack clients
type Config struct {
	// Backend API services
	Services ServicesConfig `yaml:"services"`

	// Health probe targets
	Health HealthConfig `yaml:"health"`

	// Web frontend
	Web WebConfig `yaml:"web"`

	// Local session storage
	Session SessionConfig `yaml:"session"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ServicesConfig holds the location of the three backend APIs
type ServicesConfig struct {
	Host        string `yaml:"host" validate:"required"`
	UserPort    int    `yaml:"user_port" validate:"min=1,max=65535"`
	ExpensePort int    `yaml:"expense_port" validate:"min=1,max=65535"`
	ReportPort  int    `yaml:"report_port" validate:"min=1,max=65535"`
}

// UserURL returns the base URL of the user service API
func (s ServicesConfig) UserURL() string { return apiURL(s.Host, s.UserPort) }

// ExpenseURL returns the base URL of the expense service API
func (s ServicesConfig) ExpenseURL() string { return apiURL(s.Host, s.ExpensePort) }

// ReportURL returns the base URL of the report service API
func (s ServicesConfig) ReportURL() string { return apiURL(s.Host, s.ReportPort) }

func apiURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d/api/v1", host, port)
}

// HealthConfig holds health probe configuration
type HealthConfig struct {
	Host        string        `yaml:"host" validate:"required"`
	UserPort    int           `yaml:"user_port" validate:"min=1,max=65535"`
	ExpensePort int           `yaml:"expense_port" validate:"min=1,max=65535"`
	ReportPort  int           `yaml:"report_port" validate:"min=1,max=65535"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Schedule    string        `yaml:"schedule" validate:"required"` // cron schedule used by watch mode
}

// WebConfig holds web frontend configuration
type WebConfig struct {
	Port          int      `yaml:"port" validate:"min=1,max=65535"`
	AllowOrigins  []string `yaml:"allow_origins" validate:"dive,required"`
	SecureCookies bool     `yaml:"secure_cookies"`
}

// SessionConfig selects where the CLI keeps its session
type SessionConfig struct {
	Backend string `yaml:"backend" validate:"oneof=keyring sqlite memory"`
	Path    string `yaml:"path"` // sqlite file; empty means the user config dir
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=json console"` // json, console
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Services: ServicesConfig{
			Host:        "localhost",
			UserPort:    8001,
			ExpensePort: 8002,
			ReportPort:  8003,
		},
		Health: HealthConfig{
			Host:        "localhost",
			UserPort:    8081,
			ExpensePort: 8082,
			ReportPort:  8083,
			Timeout:     5 * time.Second,
			Schedule:    "@every 30s",
		},
		Web: WebConfig{
			Port:         8000,
			AllowOrigins: []string{"http://localhost:8000"},
		},
		Session: SessionConfig{
			Backend: "keyring",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from defaults, an optional YAML file named by
// FINTRACK_CONFIG, and environment variables, in that order, then validates it.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Default()

	if path := os.Getenv("FINTRACK_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.Services.Host = getEnv("API_HOST", c.Services.Host)
	c.Health.Host = getEnv("HEALTH_HOST", c.Health.Host)
	c.Health.Schedule = getEnv("HEALTH_SCHEDULE", c.Health.Schedule)
	c.Session.Backend = getEnv("FINTRACK_SESSION_BACKEND", c.Session.Backend)
	c.Session.Path = getEnv("FINTRACK_SESSION_PATH", c.Session.Path)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)

	if origins := os.Getenv("WEB_ALLOW_ORIGINS"); origins != "" {
		c.Web.AllowOrigins = strings.Split(origins, ",")
	}

	ports := []struct {
		key  string
		dest *int
	}{
		{"USER_SERVICE_PORT", &c.Services.UserPort},
		{"EXPENSE_SERVICE_PORT", &c.Services.ExpensePort},
		{"REPORT_SERVICE_PORT", &c.Services.ReportPort},
		{"USER_HEALTH_PORT", &c.Health.UserPort},
		{"EXPENSE_HEALTH_PORT", &c.Health.ExpensePort},
		{"REPORT_HEALTH_PORT", &c.Health.ReportPort},
		{"WEB_FRONTEND_PORT", &c.Web.Port},
	}
	for _, p := range ports {
		if err := getEnvInt(p.key, p.dest); err != nil {
			return err
		}
	}

	if raw := os.Getenv("HEALTH_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid HEALTH_TIMEOUT %q: %w", raw, err)
		}
		c.Health.Timeout = timeout
	}

	if raw := os.Getenv("WEB_SECURE_COOKIES"); raw != "" {
		secure, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid WEB_SECURE_COOKIES %q: %w", raw, err)
		}
		c.Web.SecureCookies = secure
	}

	return nil
}

// Validate rejects configurations the clients cannot run with
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s fails '%s' (got %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, dest *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be a port number", key, raw)
	}
	*dest = value
	return nil
}
