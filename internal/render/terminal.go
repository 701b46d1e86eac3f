package render

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// TerminalPage renders a MemoryPage as plain text
type TerminalPage struct {
	*MemoryPage
	out io.Writer
}

// NewTerminalPage creates a terminal page with the given element ids
func NewTerminalPage(out io.Writer, ids ...string) *TerminalPage {
	return &TerminalPage{MemoryPage: NewMemoryPage(ids...), out: out}
}

// Flush writes the visible state of the page
func (t *TerminalPage) Flush() error {
	if n := t.Node(UserName); n != nil && !n.Hidden {
		if _, err := fmt.Fprintf(t.out, "Logged in as %s\n", n.Text); err != nil {
			return err
		}
	}
	if t.Visible(AuthLinks) {
		if _, err := fmt.Fprintln(t.out, "Not logged in. Run 'fintrack login' or 'fintrack register'."); err != nil {
			return err
		}
	}

	n := t.Node(ServiceStatus)
	if n == nil || len(n.Rows) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSTATUS")
	fmt.Fprintln(w, "───────\t──────")
	for _, row := range n.Rows {
		fmt.Fprintf(w, "%s\t%s\n", row.Label, row.Value)
	}
	return w.Flush()
}
