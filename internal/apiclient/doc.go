// Package apiclient talks to the FinTrack user, expense and report services.
//
// Every call goes through Client.Do, which attaches the bearer token from the
// session store, always sends a JSON content type and handles two conditions
// globally:
//
//   - HTTP 401: the session is cleared, the navigator is sent to the login
//     page and Do returns ErrSessionExpired with no response. Callers must
//     treat that as "request aborted" and not look for a body.
//   - Transport failure: the error wraps ErrServiceUnavailable when the
//     service could not be reached at all, ErrNetwork otherwise. Nothing is
//     retried.
//
// Any other status is returned as the raw *http.Response. The resource
// wrappers (Users, Expenses, Reports) only shape paths, methods, bodies and
// query strings; DecodeJSON turns a response into a value or an *APIError.
package apiclient
