// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"errors"
	"sync"

	"github.com/ebosoh/sales-agent/internal/browser"
)

// PNG is the placeholder image returned by screenshots.
var PNG = []byte("\x89PNG\r\n\x1a\nfake")

// Node is a fake element. Children maps a selector to the nodes it
// matches below this node.
type Node struct {
	Content  string
	Attrs    map[string]string
	Children map[string][]*Node
	Shot     []byte

	onClick func()
}

func (n *Node) Text(context.Context) (string, error) {
	return n.Content, nil
}

func (n *Node) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := n.Attrs[name]
	return v, ok, nil
}

func (n *Node) Query(_ context.Context, selector string) ([]browser.Element, error) {
	return elements(n.Children[selector]), nil
}

func (n *Node) Click(context.Context) error {
	if n.onClick != nil {
		n.onClick()
	}
	return nil
}

func (n *Node) Screenshot(context.Context) ([]byte, error) {
	if n.Shot == nil {
		return nil, errors.New("element not visible")
	}
	return n.Shot, nil
}

func (n *Node) add(selector string, child *Node) *Node {
	if n.Children == nil {
		n.Children = make(map[string][]*Node)
	}
	n.Children[selector] = append(n.Children[selector], child)
	return n
}

func elements(nodes []*Node) []browser.Element {
	out := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}

// Message builds a message row the way the client renders one: meta is the
// prefix attribute, text may be empty for image-only posts.
func Message(l browser.Layout, meta, text string) *Node {
	row := &Node{}
	row.add(l.Meta, &Node{Attrs: map[string]string{l.MetaAttr: meta}})
	if text != "" {
		row.add(l.Text, &Node{Content: text})
	}
	return row
}

// WithImage attaches an image to a message row.
func (n *Node) WithImage(l browser.Layout, png []byte) *Node {
	return n.add(l.Image, &Node{Shot: png})
}

// WithQuote marks a message row as a reply to sender's text.
func (n *Node) WithQuote(l browser.Layout, sender, text string) *Node {
	q := &Node{}
	q.add(l.QuotedPart, &Node{Content: sender})
	q.add(l.QuotedPart, &Node{Content: text})
	return n.add(l.Quoted, q)
}

// Chat is a conversation in the fake chat list.
type Chat struct {
	Title string
	Rows  []*Node
	// Err is returned when the open chat's rows are queried.
	Err error
}

// Page is a fake browser.Session. Chat titles past the visible count are
// only found after enough scrolls.
type Page struct {
	Layout browser.Layout

	mu          sync.Mutex
	chats       []*Chat
	visible     int
	step        int
	open        *Chat
	url         string
	loggedIn    bool
	qr          string
	broken      error
	scrolls     int
	screenshots int
	opened      []string
	closed      bool
}

// New returns a logged-in page with every chat visible.
func New(l browser.Layout) *Page {
	return &Page{Layout: l, visible: -1, loggedIn: true}
}

// AddChat appends a chat to the chat list.
func (p *Page) AddChat(title string, rows ...*Node) *Chat {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := &Chat{Title: title, Rows: rows}
	p.chats = append(p.chats, c)
	return c
}

// SetVisible renders only the first n chats; each scroll reveals step more.
func (p *Page) SetVisible(n, step int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible, p.step = n, step
}

// SetLoggedOut shows a login QR code instead of the chat list.
func (p *Page) SetLoggedOut(qr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn, p.qr = false, qr
}

// SetLoggedIn shows the chat list.
func (p *Page) SetLoggedIn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn, p.qr = true, ""
}

// Break makes every subsequent call fail with err, as when the browser dies.
func (p *Page) Break(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broken = err
}

// Scrolls reports how many times the chat list was scrolled.
func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// Screenshots reports how many page screenshots were taken.
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenshots
}

// Opened lists the chats clicked, in order.
func (p *Page) Opened() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.opened...)
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken != nil {
		return p.broken
	}
	p.url = url
	return ctx.Err()
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) WaitFor(ctx context.Context, selector string) error {
	els, err := p.Query(ctx, selector)
	if err != nil {
		return err
	}
	if len(els) == 0 {
		return browser.ErrNotFound
	}
	return nil
}

func (p *Page) Query(ctx context.Context, selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken != nil {
		return nil, p.broken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch selector {
	case p.Layout.MessageRow:
		if p.open == nil {
			return nil, nil
		}
		if p.open.Err != nil {
			return nil, p.open.Err
		}
		return elements(p.open.Rows), nil
	case p.Layout.ChatList:
		if p.loggedIn {
			return []browser.Element{&Node{}}, nil
		}
	case p.Layout.QRCode:
		if !p.loggedIn && p.qr != "" {
			return []browser.Element{&Node{Attrs: map[string]string{p.Layout.QRAttr: p.qr}}}, nil
		}
	}
	return nil, nil
}

// FindByText searches the titles of the rendered chats; selector is ignored.
func (p *Page) FindByText(ctx context.Context, _ string, text string) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken != nil {
		return nil, p.broken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(p.chats)
	if p.visible >= 0 && p.visible < n {
		n = p.visible
	}
	for _, c := range p.chats[:n] {
		if c.Title != text {
			continue
		}
		c := c
		return &Node{Content: c.Title, onClick: func() {
			p.mu.Lock()
			p.open = c
			p.opened = append(p.opened, c.Title)
			p.mu.Unlock()
		}}, nil
	}
	return nil, browser.ErrNotFound
}

func (p *Page) Scroll(ctx context.Context, _ string, _ float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken != nil {
		return p.broken
	}
	p.scrolls++
	if p.visible >= 0 {
		p.visible += p.step
	}
	return ctx.Err()
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken != nil {
		return nil, p.broken
	}
	p.screenshots++
	return PNG, ctx.Err()
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

var _ browser.Session = (*Page)(nil)
