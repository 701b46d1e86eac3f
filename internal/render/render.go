// Package render decouples page logic from the thing that displays it.
//
// Auth state and health status code talks to a Page made of Elements
// addressed by id, and to a Navigator for redirects. The web frontend feeds a
// MemoryPage into its HTML templates; the CLI prints one with TerminalPage.
package render

// Element ids shared by every page
const (
	NavLinks      = "nav-links"
	AuthLinks     = "auth-links"
	LogoutButton  = "logout-btn"
	UserName      = "user-name"
	ServiceStatus = "service-status"
)

// Navigation targets
const (
	HomePath  = "/"
	LoginPath = "/login"
)

// Row is one line of tabular content inside an element
type Row struct {
	Label string
	Value string
	Class string
}

// Element is a single addressable piece of a page
type Element interface {
	SetHidden(hidden bool)
	SetText(text string)
	// SetRows replaces the element's content entirely
	SetRows(rows []Row)
	OnClick(fn func())
}

// Page looks up elements by id. A missing element is reported with ok=false.
type Page interface {
	Element(id string) (Element, bool)
}

// Navigator moves the user to another location
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// With runs fn on the element if the page has it
func With(page Page, id string, fn func(Element)) {
	if page == nil {
		return
	}
	if el, ok := page.Element(id); ok {
		fn(el)
	}
}
