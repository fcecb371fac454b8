package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// RodConfig configures a Rod session.
type RodConfig struct {
	// UserDataDir keeps cookies and local storage between runs so the
	// linked-device login survives restarts.
	UserDataDir string
	Headless    bool
	// RemoteURL is the DevTools WebSocket URL of an already running
	// browser. Empty launches a local one.
	RemoteURL string
	// NavigateTimeout bounds page loads. Default: 60s.
	NavigateTimeout time.Duration
	Logger          *zap.Logger
}

// Rod is a Session backed by a Chromium instance driven over DevTools.
type Rod struct {
	cfg     RodConfig
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
}

// OpenRod launches (or connects to) a browser and opens a stealth page.
func OpenRod(ctx context.Context, cfg RodConfig) (*Rod, error) {
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	log := cfg.Logger

	r := &Rod{cfg: cfg}
	wsURL := cfg.RemoteURL
	if wsURL != "" {
		log.Info("connecting to remote browser", zap.String("url", wsURL))
	} else {
		l := launcher.New().
			Headless(cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		if cfg.UserDataDir != "" {
			l = l.UserDataDir(cfg.UserDataDir)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		r.lnch = l
		log.Info("launched local browser",
			zap.String("url", wsURL),
			zap.Bool("headless", cfg.Headless),
			zap.String("user_data_dir", cfg.UserDataDir))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		r.kill()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	r.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("browser: open page: %w", err)
	}
	r.page = page
	return r, nil
}

func (r *Rod) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavigateTimeout)
	defer cancel()

	if err := r.page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := r.page.Context(navCtx).WaitLoad(); err != nil {
		r.cfg.Logger.Warn("wait load timeout", zap.String("url", url), zap.Error(err))
	}
	return nil
}

func (r *Rod) URL() string {
	info, err := r.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (r *Rod) WaitFor(ctx context.Context, selector string) error {
	if _, err := r.page.Context(ctx).Element(selector); err != nil {
		return fmt.Errorf("browser: wait for %s: %w", selector, err)
	}
	return nil
}

func (r *Rod) Query(ctx context.Context, selector string) ([]Element, error) {
	els, err := r.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %s: %w", selector, err)
	}
	return wrap(els), nil
}

func (r *Rod) FindByText(ctx context.Context, selector, text string) (Element, error) {
	els, err := r.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %s: %w", selector, err)
	}
	want := strings.TrimSpace(text)
	for _, el := range els {
		el := el.Context(ctx)
		if title, err := el.Attribute("title"); err == nil && title != nil && strings.TrimSpace(*title) == want {
			return rodElement{el}, nil
		}
		if visible, err := el.Text(); err == nil && strings.TrimSpace(visible) == want {
			return rodElement{el}, nil
		}
	}
	return nil, ErrNotFound
}

func (r *Rod) Scroll(ctx context.Context, scope string, dy float64) error {
	page := r.page.Context(ctx)
	if has, el, err := page.Has(scope); err == nil && has {
		if err := el.Hover(); err != nil {
			r.cfg.Logger.Debug("hover before scroll failed", zap.Error(err))
		}
	}
	return page.Mouse.Scroll(0, dy, 1)
}

func (r *Rod) Screenshot(ctx context.Context) ([]byte, error) {
	return r.page.Context(ctx).Screenshot(false, nil)
}

// Close closes the browser. The launcher is killed rather than cleaned up
// because Cleanup removes the user data dir.
func (r *Rod) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if err != nil {
		r.kill()
	}
	return err
}

func (r *Rod) kill() {
	if r.lnch != nil {
		r.lnch.Kill()
		r.lnch = nil
	}
}

type rodElement struct {
	el *rod.Element
}

func wrap(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el})
	}
	return out
}

func (e rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e rodElement) Query(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els), nil
}

func (e rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e rodElement) Screenshot(ctx context.Context) ([]byte, error) {
	return e.el.Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}
