// Package authstate reflects the local session into page navigation.
//
// A user counts as signed in when the session holds both a token and a
// profile; nothing else is checked. RequireAuth therefore only keeps signed
// out users away from protected pages, it is not an access control.
package authstate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fintrack-dev/fintrack/internal/render"
	"github.com/fintrack-dev/fintrack/internal/session"
)

// Controller toggles navigation elements from session state
type Controller struct {
	store  session.Store
	nav    render.Navigator
	logger zerolog.Logger
}

// New creates a controller
func New(store session.Store, nav render.Navigator, logger zerolog.Logger) *Controller {
	return &Controller{store: store, nav: nav, logger: logger}
}

// Check shows the navigation matching the session and reports whether the
// user is signed in. The session itself is never modified.
func (c *Controller) Check(ctx context.Context, page render.Page) bool {
	sess, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to load session, treating as logged out")
		sess = session.Session{}
	}

	if sess.Authenticated() {
		showAuthenticated(page, sess.DisplayName())
		return true
	}

	showUnauthenticated(page)
	return false
}

func showAuthenticated(page render.Page, name string) {
	render.With(page, render.NavLinks, func(el render.Element) { el.SetHidden(false) })
	render.With(page, render.AuthLinks, func(el render.Element) { el.SetHidden(true) })
	render.With(page, render.LogoutButton, func(el render.Element) { el.SetHidden(false) })
	render.With(page, render.UserName, func(el render.Element) {
		el.SetText(name)
		el.SetHidden(false)
	})
}

func showUnauthenticated(page render.Page) {
	render.With(page, render.NavLinks, func(el render.Element) { el.SetHidden(true) })
	render.With(page, render.AuthLinks, func(el render.Element) { el.SetHidden(false) })
	render.With(page, render.LogoutButton, func(el render.Element) { el.SetHidden(true) })
	render.With(page, render.UserName, func(el render.Element) { el.SetHidden(true) })
}

// Logout clears the session and navigates to the site root
func (c *Controller) Logout(ctx context.Context) error {
	err := c.store.Clear(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to clear session")
	}
	c.navigate(render.HomePath)
	return err
}

// Init is the page-ready hook: it runs Check once and binds Logout to the
// logout button when the page has one.
func (c *Controller) Init(ctx context.Context, page render.Page) bool {
	authenticated := c.Check(ctx, page)

	render.With(page, render.LogoutButton, func(el render.Element) {
		el.OnClick(func() {
			_ = c.Logout(ctx)
		})
	})

	return authenticated
}

// RequireAuth runs Check and sends signed out users to the login page
func (c *Controller) RequireAuth(ctx context.Context, page render.Page) bool {
	if c.Check(ctx, page) {
		return true
	}
	c.navigate(render.LoginPath)
	return false
}

func (c *Controller) navigate(path string) {
	if c.nav != nil {
		c.nav.Navigate(path)
	}
}
