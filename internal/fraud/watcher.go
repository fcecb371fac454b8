// Package fraud scans stored messages for fraud reports and shares the
// numbers they name with the community list.
package fraud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/monitor"
	"github.com/ebosoh/sales-agent/internal/pipeline"
	"github.com/ebosoh/sales-agent/internal/store"
)

// CursorKey names the watcher's high-water mark in agent_state.
const CursorKey = "fraud_watcher.last_checked_id"

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 2 * time.Minute

// ErrNoCommunity is returned by Tick when no community store is available.
var ErrNoCommunity = errors.New("community store unavailable")

// Source is the local store as seen by the watcher.
type Source interface {
	QueryMessages(f store.MessageFilter) ([]store.Message, error)
	GetCursor(key string) (int64, error)
	SetCursor(key string, value int64) error
}

// Detector finds fraud reports in message text.
type Detector interface {
	DetectFraud(ctx context.Context, text string) (pipeline.FraudFinding, bool)
}

// Watcher polls for new messages and records the fraud reports they contain.
type Watcher struct {
	src       Source
	community store.Community
	detector  Detector
	bus       *bus.Bus
	interval  time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	cursor int64
	loaded bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a Watcher. src must be a connection of its own, not
// shared with the scrape loop. community may be nil, which disables it.
func NewWatcher(src Source, community store.Community, detector Detector, b *bus.Bus, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		src:       src,
		community: community,
		detector:  detector,
		bus:       b,
		interval:  interval,
		logger:    logger.Named("fraud"),
	}
}

// Start begins polling in the background.
func (w *Watcher) Start(ctx context.Context) {
	if w.community == nil {
		w.logger.Warn("fraud analysis disabled: no community store")
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

// Stop stops the loop and waits for the current tick to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Cursor returns the id of the last message handed to the detector.
func (w *Watcher) Cursor() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

func (w *Watcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("fraud tick failed", zap.Error(err))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Tick checks every message stored since the previous tick. The cursor
// moves past the whole batch before any message is analysed, so a failure
// part way through is not retried; a repeated check after a crash is
// harmless because inserts ignore known numbers. It returns the number of
// new community reports.
func (w *Watcher) Tick(ctx context.Context) (int, error) {
	if w.community == nil {
		return 0, ErrNoCommunity
	}
	cursor, err := w.loadCursor()
	if err != nil {
		return 0, err
	}

	msgs, err := w.src.QueryMessages(store.MessageFilter{AfterID: cursor, Order: store.OldestFirst})
	if err != nil {
		return 0, fmt.Errorf("read new messages: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	next := cursor
	for _, m := range msgs {
		next = max(next, m.ID)
	}
	w.mu.Lock()
	w.cursor = next
	w.mu.Unlock()
	if err := w.src.SetCursor(CursorKey, next); err != nil {
		w.logger.Warn("persist cursor", zap.Int64("cursor", next), zap.Error(err))
	}

	found := 0
	for _, m := range msgs {
		if ctx.Err() != nil {
			return found, ctx.Err()
		}
		if m.Text == "" || m.Text == monitor.ImagePost {
			continue
		}
		finding, ok := w.detector.DetectFraud(ctx, m.Text)
		if !ok {
			continue
		}
		reason := finding.Reason
		if reason == "" {
			reason = "AI Detected"
		}
		r := &store.FraudReport{
			PhoneNumber: finding.PhoneNumber,
			Reason:      reason,
			ReportedBy:  "AI(" + m.Sender + ")",
		}
		inserted, err := w.community.InsertFraudReport(ctx, r)
		if err != nil {
			w.logger.Error("save fraud report",
				zap.Int64("message_id", m.ID),
				zap.String("phone", finding.PhoneNumber),
				zap.Error(err))
			continue
		}
		if !inserted {
			w.logger.Debug("number already reported", zap.String("phone", finding.PhoneNumber))
			continue
		}
		found++
		w.logger.Info("fraud report detected",
			zap.String("phone", r.PhoneNumber),
			zap.String("reported_by", r.ReportedBy),
			zap.Int64("message_id", m.ID))
		if w.bus != nil {
			w.bus.Emit(bus.FraudDetected, *r)
		}
	}
	return found, nil
}

func (w *Watcher) loadCursor() (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded {
		return w.cursor, nil
	}
	c, err := w.src.GetCursor(CursorKey)
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	w.cursor, w.loaded = c, true
	return c, nil
}
