package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single probe when none is configured
const DefaultTimeout = 5 * time.Second

// Checker probes health endpoints
type Checker struct {
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewChecker creates a checker. A non-positive timeout selects DefaultTimeout.
func NewChecker(timeout time.Duration, logger zerolog.Logger) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger.With().Str("component", "health_checker").Logger(),
	}
}

// SetHTTPClient replaces the client used for probes
func (c *Checker) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Check probes every service concurrently and waits for all of them.
// Results come back in the order of services; one failure never cancels
// another probe.
func (c *Checker) Check(ctx context.Context, services []Service) []Result {
	results := make([]Result, len(services))

	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func(i int, svc Service) {
			defer wg.Done()
			results[i] = c.probe(ctx, svc)
		}(i, svc)
	}
	wg.Wait()

	return results
}

func (c *Checker) probe(ctx context.Context, svc Service) (result Result) {
	result = Result{Service: svc.Name, URL: svc.URL}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.URL, nil)
	if err != nil {
		result.Status = StatusUnreachable
		result.Error = fmt.Sprintf("invalid health url: %v", err)
		return result
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("service", svc.Name).Str("url", svc.URL).Msg("Health probe failed")
		result.Status = StatusUnreachable
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Status = StatusHealthy
	} else {
		result.Status = StatusUnhealthy
	}

	c.logger.Debug().
		Str("service", svc.Name).
		Int("status_code", resp.StatusCode).
		Msg("Health probe completed")

	return result
}
