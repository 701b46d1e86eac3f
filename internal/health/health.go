// Package health probes the FinTrack backend services and renders their status.
package health

import (
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/config"
)

// Status of a single service probe
type Status string

const (
	StatusHealthy     Status = "healthy"
	StatusUnhealthy   Status = "unhealthy"
	StatusUnreachable Status = "unreachable"
)

// Service names one health endpoint
type Service struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Result is the outcome of probing one service
type Result struct {
	Service    string        `json:"service"`
	URL        string        `json:"url"`
	Status     Status        `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
}

// Healthy reports whether the probe got a 2xx answer
func (r Result) Healthy() bool { return r.Status == StatusHealthy }

// DefaultServices returns the three FinTrack health endpoints
func DefaultServices(cfg config.HealthConfig) []Service {
	return []Service{
		{Name: "User Service", URL: healthURL(cfg.Host, cfg.UserPort)},
		{Name: "Expense Service", URL: healthURL(cfg.Host, cfg.ExpensePort)},
		{Name: "Report Service", URL: healthURL(cfg.Host, cfg.ReportPort)},
	}
}

func healthURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d/healthz", host, port)
}

// Summary counts results per status
type Summary struct {
	Total       int  `json:"total"`
	Healthy     int  `json:"healthy"`
	Unhealthy   int  `json:"unhealthy"`
	Unreachable int  `json:"unreachable"`
	AllHealthy  bool `json:"all_healthy"`
}

// Summarize counts results per status
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusHealthy:
			s.Healthy++
		case StatusUnhealthy:
			s.Unhealthy++
		default:
			s.Unreachable++
		}
	}
	s.AllHealthy = s.Total > 0 && s.Healthy == s.Total
	return s
}
