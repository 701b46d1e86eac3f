package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-dev/fintrack/internal/session"
)

const sessionMaxAge = 7 * 24 * time.Hour

// CookieStore keeps the session in two browser cookies named after the
// session keys. Writes are visible to later reads within the same request.
type CookieStore struct {
	c      *gin.Context
	secure bool
	cached *session.Session
}

// NewCookieStore creates a store bound to one request
func NewCookieStore(c *gin.Context, secure bool) *CookieStore {
	return &CookieStore{c: c, secure: secure}
}

func (s *CookieStore) Load(ctx context.Context) (session.Session, error) {
	if s.cached != nil {
		return *s.cached, nil
	}

	token, _ := s.c.Cookie(session.TokenKey)
	user, _ := s.c.Cookie(session.UserKey)

	sess := session.Session{Token: token, User: user}
	s.cached = &sess
	return sess, nil
}

func (s *CookieStore) Save(ctx context.Context, sess session.Session) error {
	s.setCookie(session.TokenKey, sess.Token)
	s.setCookie(session.UserKey, sess.User)
	s.cached = &sess
	return nil
}

func (s *CookieStore) Clear(ctx context.Context) error {
	return s.Save(ctx, session.Session{})
}

func (s *CookieStore) setCookie(name, value string) {
	maxAge := int(sessionMaxAge.Seconds())
	if value == "" {
		maxAge = -1
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}

// redirector records the last navigation requested while handling a request
type redirector struct {
	target string
}

func (r *redirector) Navigate(path string) { r.target = path }

// reset forgets a pending navigation
func (r *redirector) reset() { r.target = "" }

// redirect issues a 303 to the recorded target, reporting whether it did
func (r *redirector) redirect(c *gin.Context) bool {
	if r.target == "" {
		return false
	}
	c.Redirect(http.StatusSeeOther, r.target)
	c.Abort()
	return true
}
