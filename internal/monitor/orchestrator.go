// Package monitor runs the scrape loop: it walks the configured groups in
// the browser session, reads the rendered messages and stores the new ones.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebosoh/sales-agent/internal/browser"
	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/status"
	"github.com/ebosoh/sales-agent/internal/store"
)

// Store is the subset of the local store the scrape loop needs.
type Store interface {
	ListGroups() ([]store.Group, error)
	InsertMessageIfAbsent(m *store.Message) (bool, error)
}

// Opener opens a browser session for one monitoring run.
type Opener func(ctx context.Context) (browser.Session, error)

// Config controls pacing and layout. Zero values take the defaults.
type Config struct {
	Layout         browser.Layout
	MaxScrolls     int
	ScrollDelta    float64
	ScrollPause    time.Duration
	Settle         time.Duration
	InterGroup     time.Duration
	InterCycle     time.Duration
	EmptyWait      time.Duration
	PanelTimeout   time.Duration
	LoginPoll      time.Duration
	DiagnosticsDir string
	// Location interprets display timestamps. Default: time.Local.
	Location *time.Location
}

func (c *Config) defaults() {
	if c.Layout.URL == "" {
		c.Layout = browser.DefaultLayout
	}
	if c.MaxScrolls <= 0 {
		c.MaxScrolls = 10
	}
	if c.ScrollDelta == 0 {
		c.ScrollDelta = 500
	}
	if c.ScrollPause <= 0 {
		c.ScrollPause = time.Second
	}
	if c.Settle <= 0 {
		c.Settle = 5 * time.Second
	}
	if c.InterGroup <= 0 {
		c.InterGroup = 10 * time.Second
	}
	if c.InterCycle <= 0 {
		c.InterCycle = time.Minute
	}
	if c.EmptyWait <= 0 {
		c.EmptyWait = 30 * time.Second
	}
	if c.PanelTimeout <= 0 {
		c.PanelTimeout = 30 * time.Second
	}
	if c.LoginPoll <= 0 {
		c.LoginPoll = 2 * time.Second
	}
	if c.Location == nil {
		c.Location = time.Local
	}
}

// Orchestrator owns one monitoring session at a time.
type Orchestrator struct {
	cfg     Config
	store   Store
	open    Opener
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New creates an Orchestrator. machine must be in the Stopped state.
func New(cfg Config, st Store, open Opener, b *bus.Bus, m *status.Machine, logger *zap.Logger) *Orchestrator {
	cfg.defaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = status.NewMachine(b)
	}
	done := make(chan struct{})
	close(done)
	return &Orchestrator{
		cfg:     cfg,
		store:   st,
		open:    open,
		bus:     b,
		machine: m,
		logger:  logger.Named("monitor"),
		done:    done,
	}
}

// Start launches a monitoring session in the background. It fails without
// side effects when no group is configured. The session outlives ctx's
// cancellation; use Stop to end it.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		return ErrAlreadyRunning
	}
	groups, err := o.store.ListGroups()
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	if len(groups) == 0 {
		return ErrNoGroups
	}
	if err := o.machine.Transition(status.Starting); err != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	o.cancel = cancel
	o.done = done
	o.err = nil

	go o.loop(runCtx, done)
	return nil
}

// Stop asks the running session to end. The loop exits at its next
// checkpoint; wait on Done for it to finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil {
		return
	}
	if err := o.machine.Transition(status.Stopping); err != nil {
		o.logger.Debug("stop transition", zap.Error(err))
	}
	o.cancel()
}

// Done is closed when the current session has ended.
func (o *Orchestrator) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// Err returns the fatal error that ended the last session, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Status returns the current state of the session.
func (o *Orchestrator) Status() status.Snapshot {
	return o.machine.Snapshot()
}

func (o *Orchestrator) loop(ctx context.Context, done chan struct{}) {
	err := o.run(ctx)
	if ctx.Err() != nil {
		err = nil
	}

	o.mu.Lock()
	o.cancel = nil
	o.err = err
	if err := o.machine.Transition(status.Stopped); err != nil {
		o.logger.Debug("stopped transition", zap.Error(err))
	}
	o.mu.Unlock()

	if err != nil {
		o.logger.Error("monitoring stopped", zap.Error(err))
		o.emit(bus.MonitorFailed, err)
	} else {
		o.logger.Info("monitoring stopped")
	}
	o.status("monitoring stopped")
	close(done)
}

func (o *Orchestrator) run(ctx context.Context) error {
	o.status("opening browser")
	sess, err := o.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionLost, err)
	}
	defer sess.Close()

	host := strings.TrimSuffix(strings.TrimPrefix(o.cfg.Layout.URL, "https://"), "/")
	if !strings.Contains(sess.URL(), host) {
		o.status("navigating to " + o.cfg.Layout.URL)
		if err := sess.Navigate(ctx, o.cfg.Layout.URL); err != nil {
			return fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
	}

	o.status("waiting for login")
	err = browser.WaitForLogin(ctx, sess, o.cfg.Layout, o.cfg.LoginPoll, func(code string) {
		qr, err := browser.RenderQR(code)
		if err != nil {
			o.logger.Warn("render login code", zap.Error(err))
			return
		}
		o.status("scan the QR code with your phone to log in")
		o.emit(bus.MonitorLogin, qr)
	})
	if err != nil {
		return err
	}

	o.enter(status.Running, "")
	o.status("connected to browser")

	for ctx.Err() == nil {
		groups, err := o.store.ListGroups()
		if err != nil {
			return fmt.Errorf("list groups: %w", err)
		}
		if len(groups) == 0 {
			o.enter(status.Idle, "")
			o.status("no groups to monitor, waiting")
			if !sleep(ctx, o.cfg.EmptyWait) {
				return nil
			}
			o.enter(status.Running, "")
			continue
		}

		for _, g := range groups {
			if ctx.Err() != nil {
				return nil
			}
			if err := o.visit(ctx, sess, g.Name); err != nil {
				var gerr *GroupError
				if !errors.As(err, &gerr) {
					return err
				}
				o.logger.Warn("group failed",
					zap.String("group", gerr.Group),
					zap.String("screenshot", gerr.Screenshot),
					zap.Error(gerr.Err))
				o.emit(bus.MonitorGroupFailed, gerr)
				o.status(fmt.Sprintf("failed to load group %s", g.Name))
			}
			if !sleep(ctx, o.cfg.InterGroup) {
				return nil
			}
		}

		o.enter(status.Idle, "")
		o.status("cycle complete, waiting")
		if !sleep(ctx, o.cfg.InterCycle) {
			return nil
		}
		o.enter(status.Running, "")
	}
	return nil
}

// visit searches for one group and stores its rendered messages. Per-group
// problems come back as *GroupError; anything else is fatal.
func (o *Orchestrator) visit(ctx context.Context, sess browser.Session, group string) error {
	o.enter(status.Searching, group)
	o.status("searching for group " + group)

	panelCtx, cancel := context.WithTimeout(ctx, o.cfg.PanelTimeout)
	err := sess.WaitFor(panelCtx, o.cfg.Layout.ChatList)
	cancel()
	if err != nil {
		return o.groupFailure(ctx, sess, group, fmt.Errorf("chat list not visible: %w", err))
	}

	el, err := o.search(ctx, sess, group)
	if err != nil {
		return o.groupFailure(ctx, sess, group, err)
	}
	if err := el.Click(ctx); err != nil {
		return o.groupFailure(ctx, sess, group, fmt.Errorf("open chat: %w", err))
	}

	o.enter(status.Scraping, group)
	o.status("scraping group " + group)
	if !sleep(ctx, o.cfg.Settle) {
		return nil
	}

	msgs, err := scrapeRows(ctx, sess, o.cfg.Layout, group, o.cfg.Location, o.logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return o.groupFailure(ctx, sess, group, err)
	}

	stored := 0
	for i := range msgs {
		created, err := o.store.InsertMessageIfAbsent(&msgs[i])
		if errors.Is(err, store.ErrInvalid) {
			o.logger.Debug("skipping invalid message", zap.String("group", group), zap.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("store message from %s: %w", group, err)
		}
		if created {
			stored++
			o.emit(bus.MessageStored, msgs[i].ID)
		}
	}
	o.logger.Info("scraped group",
		zap.String("group", group),
		zap.Int("rows", len(msgs)),
		zap.Int("new", stored))
	o.status(fmt.Sprintf("scraped group %s: %d new of %d", group, stored, len(msgs)))
	return nil
}

// search looks for the group among the rendered chat titles, scrolling the
// chat list up to MaxScrolls times.
func (o *Orchestrator) search(ctx context.Context, sess browser.Session, group string) (browser.Element, error) {
	for i := 0; ; i++ {
		el, err := sess.FindByText(ctx, o.cfg.Layout.ChatEntry(), group)
		if err == nil {
			return el, nil
		}
		if !errors.Is(err, browser.ErrNotFound) {
			return nil, err
		}
		if i == o.cfg.MaxScrolls {
			return nil, fmt.Errorf("%w after %d scrolls", ErrGroupNotFound, o.cfg.MaxScrolls)
		}
		if err := sess.Scroll(ctx, o.cfg.Layout.ChatList, o.cfg.ScrollDelta); err != nil {
			return nil, fmt.Errorf("scroll chat list: %w", err)
		}
		if !sleep(ctx, o.cfg.ScrollPause) {
			return nil, ctx.Err()
		}
	}
}

// groupFailure captures a diagnostic screenshot for a failed group. When
// even the screenshot fails the browser is considered gone.
func (o *Orchestrator) groupFailure(ctx context.Context, sess browser.Session, group string, cause error) error {
	if ctx.Err() != nil {
		return nil
	}
	shot, err := sess.Screenshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %v (while handling group %q: %v)", ErrSessionLost, err, group, cause)
	}

	gerr := &GroupError{Group: group, Err: cause}
	if o.cfg.DiagnosticsDir == "" {
		return gerr
	}
	if err := os.MkdirAll(o.cfg.DiagnosticsDir, 0o700); err != nil {
		o.logger.Warn("create diagnostics dir", zap.Error(err))
		return gerr
	}
	path := filepath.Join(o.cfg.DiagnosticsDir, fileSafe(group)+"-"+uuid.NewString()+".png")
	if err := os.WriteFile(path, shot, 0o600); err != nil {
		o.logger.Warn("write diagnostic screenshot", zap.Error(err))
		return gerr
	}
	gerr.Screenshot = path
	return gerr
}

func (o *Orchestrator) enter(s status.State, group string) {
	if err := o.machine.TransitionGroup(s, group); err != nil {
		o.logger.Debug("state transition", zap.Error(err))
	}
}

func (o *Orchestrator) status(msg string) {
	o.emit(bus.MonitorStatus, msg)
}

func (o *Orchestrator) emit(kind string, payload any) {
	if o.bus != nil {
		o.bus.Emit(kind, payload)
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
