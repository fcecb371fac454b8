package fraud

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/pipeline"
	"github.com/ebosoh/sales-agent/internal/store"
)

// keywordDetector reports the number after "beware of" in a message.
type keywordDetector struct {
	mu    sync.Mutex
	calls []string
}

func (d *keywordDetector) DetectFraud(_ context.Context, text string) (pipeline.FraudFinding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, text)
	_, rest, ok := strings.Cut(text, "beware of ")
	if !ok {
		return pipeline.FraudFinding{}, false
	}
	number, reason, _ := strings.Cut(rest, " ")
	return pipeline.FraudFinding{PhoneNumber: number, Reason: reason}, true
}

func (d *keywordDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type fixture struct {
	local     *store.DB
	community *store.FileCommunity
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	local, err := store.Open(filepath.Join(dir, "agent.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := local.Migrate(); err != nil {
		t.Fatal(err)
	}
	community, err := store.OpenCommunity(filepath.Join(dir, "community.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = local.Close()
		_ = community.Close()
	})
	return &fixture{local: local, community: community, dir: dir}
}

func (f *fixture) message(t *testing.T, sender, text string) {
	t.Helper()
	_, err := f.local.InsertMessageIfAbsent(&store.Message{
		GroupName: "Parts",
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) reports(t *testing.T) []store.FraudReport {
	t.Helper()
	rs, err := f.community.ListFraudReports(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return rs
}

func TestTickRecordsCommunityReport(t *testing.T) {
	f := newFixture(t)
	f.message(t, "Jane", "hello all")
	f.message(t, "Jane", "beware of 0712345678 conman")

	b := bus.New()
	sub := b.Subscribe(4, "fraud.")
	defer sub.Close()
	events := sub.C

	w := NewWatcher(f.local, f.community, &keywordDetector{}, b, time.Hour, nil)
	n, err := w.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("Tick() = %d, want 1", n)
	}

	rs := f.reports(t)
	if len(rs) != 1 {
		t.Fatalf("got %d reports, want 1", len(rs))
	}
	if rs[0].PhoneNumber != "+254712345678" || rs[0].ReportedBy != "AI(Jane)" || rs[0].Reason != "conman" {
		t.Fatalf("report = %+v", rs[0])
	}
	if rs[0].ReportedAt.IsZero() {
		t.Fatal("reported_at not stamped")
	}

	select {
	case evt := <-events:
		if evt.Kind != bus.FraudDetected {
			t.Fatalf("event kind = %s", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no fraud.detected event")
	}
}

func TestCursorDoesNotMoveWithoutNewMessages(t *testing.T) {
	f := newFixture(t)
	f.message(t, "Jane", "beware of +254712345678 thief")
	d := &keywordDetector{}
	w := NewWatcher(f.local, f.community, d, nil, time.Hour, nil)

	if _, err := w.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := w.Cursor()
	if first == 0 {
		t.Fatal("cursor did not advance")
	}
	if _, err := w.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w.Cursor() != first {
		t.Fatalf("cursor moved from %d to %d", first, w.Cursor())
	}
	if d.Calls() != 1 {
		t.Fatalf("detector called %d times, want 1", d.Calls())
	}
	if n := len(f.reports(t)); n != 1 {
		t.Fatalf("got %d reports, want 1", n)
	}
}

func TestRepeatedNumberKeepsFirstReport(t *testing.T) {
	f := newFixture(t)
	f.message(t, "Jane", "beware of +254712345678 first")
	f.message(t, "Tom", "beware of 0712345678 second")
	w := NewWatcher(f.local, f.community, &keywordDetector{}, nil, time.Hour, nil)

	n, err := w.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("Tick() = %d, want 1", n)
	}
	rs := f.reports(t)
	if len(rs) != 1 || rs[0].Reason != "first" || rs[0].ReportedBy != "AI(Jane)" {
		t.Fatalf("reports = %+v", rs)
	}
}

func TestCursorSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	f.message(t, "Jane", "beware of +254712345678 thief")
	if _, err := NewWatcher(f.local, f.community, &keywordDetector{}, nil, time.Hour, nil).Tick(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.message(t, "Tom", "nothing to see")
	d := &keywordDetector{}
	w := NewWatcher(f.local, f.community, d, nil, time.Hour, nil)
	if _, err := w.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Calls() != 1 || d.calls[0] != "nothing to see" {
		t.Fatalf("detector saw %v", d.calls)
	}
}

func TestCursorAdvancesBeforeProcessing(t *testing.T) {
	f := newFixture(t)
	f.message(t, "Jane", "one")
	f.message(t, "Jane", "two")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &keywordDetector{}
	w := NewWatcher(f.local, f.community, d, nil, time.Hour, nil)
	if _, err := w.Tick(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Tick() = %v, want context.Canceled", err)
	}
	if d.Calls() != 0 {
		t.Fatalf("detector called %d times", d.Calls())
	}
	stored, err := f.local.GetCursor(CursorKey)
	if err != nil {
		t.Fatal(err)
	}
	if stored != w.Cursor() || stored == 0 {
		t.Fatalf("stored cursor %d, in-memory %d", stored, w.Cursor())
	}
}

func TestImagePostsSkipped(t *testing.T) {
	f := newFixture(t)
	f.message(t, "Jane", "[Image Post]")
	d := &keywordDetector{}
	w := NewWatcher(f.local, f.community, d, nil, time.Hour, nil)
	if _, err := w.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Calls() != 0 {
		t.Fatalf("detector called for image post")
	}
}

func TestWithoutCommunity(t *testing.T) {
	f := newFixture(t)
	w := NewWatcher(f.local, nil, &keywordDetector{}, nil, time.Hour, nil)
	if _, err := w.Tick(context.Background()); !errors.Is(err, ErrNoCommunity) {
		t.Fatalf("Tick() = %v, want ErrNoCommunity", err)
	}
	w.Start(context.Background())
	w.Stop()
}

func TestLoop(t *testing.T) {
	f := newFixture(t)
	w := NewWatcher(f.local, f.community, &keywordDetector{}, nil, 10*time.Millisecond, nil)
	w.Start(context.Background())
	defer w.Stop()

	f.message(t, "Jane", "beware of +254712345678 thief")
	deadline := time.Now().Add(5 * time.Second)
	for len(f.reports(t)) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("loop never recorded the report")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
