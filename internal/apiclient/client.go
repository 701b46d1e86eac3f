package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/render"
	"github.com/fintrack-dev/fintrack/internal/session"
)

const requestIDHeader = "X-Request-ID"

// Services holds the base URLs of the three backend APIs
type Services struct {
	User    string
	Expense string
	Report  string
}

// ServicesFromConfig derives base URLs from the validated configuration
func ServicesFromConfig(cfg config.ServicesConfig) Services {
	return Services{
		User:    cfg.UserURL(),
		Expense: cfg.ExpenseURL(),
		Report:  cfg.ReportURL(),
	}
}

// RequestOptions configures a single call to Do
type RequestOptions struct {
	Method string      // defaults to GET
	Header http.Header // merged over the default headers, last write wins
	Body   io.Reader
}

// Client represents an HTTP client for the FinTrack APIs
type Client struct {
	services   Services
	httpClient *http.Client
	store      session.Store
	nav        render.Navigator
	logger     zerolog.Logger

	Users    *UserAPI
	Expenses *ExpenseAPI
	Reports  *ReportAPI
}

// New creates a new API client. nav receives the login redirect on 401 and
// may be nil.
func New(services Services, store session.Store, nav render.Navigator, logger zerolog.Logger) *Client {
	c := &Client{
		services: services,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:  store,
		nav:    nav,
		logger: logger,
	}
	c.Users = &UserAPI{c: c}
	c.Expenses = &ExpenseAPI{c: c}
	c.Reports = &ReportAPI{c: c}
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Do sends a request to url with the session's credentials attached.
//
// It returns ErrSessionExpired (and no response) on HTTP 401, a
// *TransportError when no response was received, and the raw response for
// every other status.
func (c *Client) Do(ctx context.Context, url string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.authHeaders(ctx) {
		req.Header[key] = values
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, ulid.Make().String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := newTransportError(url, err)
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("url", url).
			Str("kind", terr.Kind.Error()).
			Msg("API request failed")
		return nil, terr
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.expireSession(ctx, url)
		return nil, ErrSessionExpired
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Msg("API request")

	return resp, nil
}

// authHeaders returns the headers every request starts with
func (c *Client) authHeaders(ctx context.Context) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")

	token := ""
	if c.store != nil {
		sess, err := c.store.Load(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to load session, sending request without token")
		}
		token = sess.Token
	}

	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	} else {
		h.Set("Authorization", "")
	}
	return h
}

// expireSession clears local credentials and sends the user to the login page
func (c *Client) expireSession(ctx context.Context, url string) {
	c.logger.Info().Str("url", url).Msg("Session rejected by service, logging out")

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Error().Err(err).Msg("Failed to clear session")
		}
	}
	if c.nav != nil {
		c.nav.Navigate(render.LoginPath)
	}
}

// StartSession decodes a login or registration response and stores the
// resulting session
func (c *Client) StartSession(ctx context.Context, resp *http.Response) (*AuthResponse, error) {
	if c.store == nil {
		resp.Body.Close()
		return nil, fmt.Errorf("no session store configured")
	}

	var auth AuthResponse
	if err := DecodeJSON(resp, &auth); err != nil {
		return nil, err
	}
	if auth.Token == "" {
		return nil, fmt.Errorf("response did not include a token")
	}

	sess, err := session.New(auth.Token, auth.User)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &auth, nil
}

// DecodeJSON closes resp.Body and decodes it into v on 2xx. Any other status
// becomes an *APIError carrying the service's error message. v may be nil.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a service response body
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(bytes.TrimSpace(body))
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}
