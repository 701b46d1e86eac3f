package render

// Node is the in-memory state of one element
type Node struct {
	ID     string
	Hidden bool
	Text   string
	Rows   []Row

	click func()
}

func (n *Node) SetHidden(hidden bool) { n.Hidden = hidden }
func (n *Node) SetText(text string)   { n.Text = text }
func (n *Node) OnClick(fn func())     { n.click = fn }

func (n *Node) SetRows(rows []Row) {
	n.Rows = append([]Row(nil), rows...)
}

// Click invokes the bound click handler, reporting whether one was bound
func (n *Node) Click() bool {
	if n.click == nil {
		return false
	}
	n.click()
	return true
}

// MemoryPage is a Page holding a fixed set of elements, all initially visible
type MemoryPage struct {
	nodes map[string]*Node
}

// NewMemoryPage creates a page containing the given element ids
func NewMemoryPage(ids ...string) *MemoryPage {
	p := &MemoryPage{nodes: make(map[string]*Node, len(ids))}
	for _, id := range ids {
		p.nodes[id] = &Node{ID: id}
	}
	return p
}

// NewLayoutPage creates a page with the navigation elements every layout
// carries, plus any extra ids
func NewLayoutPage(extra ...string) *MemoryPage {
	ids := append([]string{NavLinks, AuthLinks, LogoutButton, UserName}, extra...)
	return NewMemoryPage(ids...)
}

func (p *MemoryPage) Element(id string) (Element, bool) {
	n, ok := p.nodes[id]
	if !ok {
		return nil, false
	}
	return n, true
}

// Node returns the element state, or nil when the page lacks id
func (p *MemoryPage) Node(id string) *Node {
	return p.nodes[id]
}

// Visible reports whether id exists and is not hidden
func (p *MemoryPage) Visible(id string) bool {
	n := p.nodes[id]
	return n != nil && !n.Hidden
}
