package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Params is a flat set of query parameters
type Params map[string]string

// Encode returns the query string with keys sorted, or "" for no params
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range p {
		values.Set(k, v)
	}
	return values.Encode()
}

func withQuery(base string, p Params) string {
	if q := p.Encode(); q != "" {
		return base + "?" + q
	}
	return base
}

func (c *Client) send(ctx context.Context, method, target string, body any) (*http.Response, error) {
	opts := RequestOptions{Method: method}
	if body != nil {
		r, err := jsonBody(body)
		if err != nil {
			return nil, err
		}
		opts.Body = r
	}
	return c.Do(ctx, target, opts)
}

// UserAPI wraps the user service
type UserAPI struct {
	c *Client
}

// Register creates an account
func (u *UserAPI) Register(ctx context.Context, req RegisterRequest) (*http.Response, error) {
	return u.c.send(ctx, http.MethodPost, u.c.services.User+"/users/register", req)
}

// Login exchanges credentials for a token
func (u *UserAPI) Login(ctx context.Context, req LoginRequest) (*http.Response, error) {
	return u.c.send(ctx, http.MethodPost, u.c.services.User+"/users/login", req)
}

// ExpenseAPI wraps the expense service
type ExpenseAPI struct {
	c *Client
}

// List returns the user's expenses. Recognised params: limit, offset.
func (e *ExpenseAPI) List(ctx context.Context, params Params) (*http.Response, error) {
	return e.c.send(ctx, http.MethodGet, withQuery(e.c.services.Expense+"/expenses", params), nil)
}

func (e *ExpenseAPI) Create(ctx context.Context, req ExpenseRequest) (*http.Response, error) {
	return e.c.send(ctx, http.MethodPost, e.c.services.Expense+"/expenses", req)
}

func (e *ExpenseAPI) Update(ctx context.Context, id uint, req ExpenseRequest) (*http.Response, error) {
	return e.c.send(ctx, http.MethodPut, fmt.Sprintf("%s/expenses/%d", e.c.services.Expense, id), req)
}

func (e *ExpenseAPI) Delete(ctx context.Context, id uint) (*http.Response, error) {
	return e.c.send(ctx, http.MethodDelete, fmt.Sprintf("%s/expenses/%d", e.c.services.Expense, id), nil)
}

// ReportAPI wraps the report service
type ReportAPI struct {
	c *Client
}

// List returns stored reports. Recognised params: type.
func (r *ReportAPI) List(ctx context.Context, params Params) (*http.Response, error) {
	return r.c.send(ctx, http.MethodGet, withQuery(r.c.services.Report+"/reports", params), nil)
}

// Monthly generates (or fetches) the monthly report. Recognised params: year, month.
func (r *ReportAPI) Monthly(ctx context.Context, params Params) (*http.Response, error) {
	return r.c.send(ctx, http.MethodGet, withQuery(r.c.services.Report+"/reports/monthly", params), nil)
}
