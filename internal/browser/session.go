// Package browser drives the messaging web client through a real browser
// session. The monitor depends only on Session and Element so tests can
// substitute an in-memory page.
package browser

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no element matches.
var ErrNotFound = errors.New("element not found")

// Element is a handle to a node in the rendered page.
type Element interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	Query(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Session is an open browser page.
type Session interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	// WaitFor blocks until selector matches or ctx is done.
	WaitFor(ctx context.Context, selector string) error
	// Query returns the elements currently matching selector without waiting.
	Query(ctx context.Context, selector string) ([]Element, error)
	// FindByText returns the first element matching selector whose title
	// attribute or visible text equals text.
	FindByText(ctx context.Context, selector, text string) (Element, error)
	// Scroll moves the pointer over the element matching scope and wheels by dy pixels.
	Scroll(ctx context.Context, scope string, dy float64) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Layout holds the structural selectors of the web client. They are kept
// apart from the scraping logic because the client's markup changes often.
type Layout struct {
	URL          string
	ChatList     string
	ChatTitle    string
	Conversation string
	MessageRow   string
	Meta         string
	MetaAttr     string
	Text         string
	Image        string
	Quoted       string
	QuotedPart   string
	QRCode       string
	QRAttr       string
}

// DefaultLayout targets WhatsApp Web.
var DefaultLayout = Layout{
	URL:          "https://web.whatsapp.com/",
	ChatList:     `[aria-label="Chat list"]`,
	ChatTitle:    `span[title]`,
	Conversation: `#main`,
	MessageRow:   `#main div[role="row"]`,
	Meta:         `div[data-pre-plain-text]`,
	MetaAttr:     "data-pre-plain-text",
	Text:         `span.selectable-text`,
	Image:        `img[src^="blob:"]`,
	Quoted:       `[aria-label="Quoted message"]`,
	QuotedPart:   `span`,
	QRCode:       `div[data-ref]`,
	QRAttr:       "data-ref",
}

// ChatEntry is the selector for chat titles inside the chat list.
func (l Layout) ChatEntry() string {
	return l.ChatList + " " + l.ChatTitle
}
