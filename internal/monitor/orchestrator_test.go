package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ebosoh/sales-agent/internal/browser"
	"github.com/ebosoh/sales-agent/internal/browser/browsertest"
	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/status"
	"github.com/ebosoh/sales-agent/internal/store"
)

var layout = browser.DefaultLayout

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "agent.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fastConfig(t *testing.T) Config {
	return Config{
		Layout:         layout,
		ScrollPause:    time.Millisecond,
		Settle:         time.Millisecond,
		InterGroup:     time.Millisecond,
		InterCycle:     time.Millisecond,
		EmptyWait:      time.Millisecond,
		PanelTimeout:   time.Second,
		LoginPoll:      time.Millisecond,
		DiagnosticsDir: filepath.Join(t.TempDir(), "diagnostics"),
		Location:       time.UTC,
	}
}

func openerFor(p *browsertest.Page) Opener {
	return func(context.Context) (browser.Session, error) { return p, nil }
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func stopAndWait(t *testing.T, o *Orchestrator) {
	t.Helper()
	o.Stop()
	select {
	case <-o.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("orchestrator did not stop")
	}
}

func countMessages(t *testing.T, db *store.DB, group string) int {
	t.Helper()
	msgs, err := db.QueryMessages(store.MessageFilter{Group: group})
	if err != nil {
		t.Fatal(err)
	}
	return len(msgs)
}

func TestStartWithoutGroups(t *testing.T) {
	db := testDB(t)
	opened := false
	o := New(fastConfig(t), db, func(context.Context) (browser.Session, error) {
		opened = true
		return browsertest.New(layout), nil
	}, nil, nil, nil)

	if err := o.Start(context.Background()); !errors.Is(err, ErrNoGroups) {
		t.Fatalf("Start() = %v, want ErrNoGroups", err)
	}
	if opened {
		t.Fatal("browser opened without groups")
	}
	if o.Status().State != status.Stopped {
		t.Fatalf("state = %s, want STOPPED", o.Status().State)
	}
}

func TestStartTwice(t *testing.T) {
	db := testDB(t)
	if err := db.InsertGroup("Parts"); err != nil {
		t.Fatal(err)
	}
	page := browsertest.New(layout)
	page.AddChat("Parts")
	cfg := fastConfig(t)
	cfg.InterCycle = time.Hour
	o := New(cfg, db, openerFor(page), nil, nil, nil)

	if err := o.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer stopAndWait(t, o)
	if err := o.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start() = %v, want ErrAlreadyRunning", err)
	}
}

func TestMissingGroupDoesNotAbortCycle(t *testing.T) {
	db := testDB(t)
	for _, g := range []string{"Absent", "Parts"} {
		if err := db.InsertGroup(g); err != nil {
			t.Fatal(err)
		}
	}
	page := browsertest.New(layout)
	page.AddChat("Parts",
		browsertest.Message(layout, "[10:21, 14/03/2024] Jane: ", "Need a bumper for a Toyota Harrier"),
		browsertest.Message(layout, "[10:25, 14/03/2024] Tom: ", "").WithImage(layout, browsertest.PNG),
	)

	b := bus.New()
	sub := b.Subscribe(10, "monitor.group_failed")
	defer sub.Close()
	events := sub.C

	cfg := fastConfig(t)
	o := New(cfg, db, openerFor(page), b, nil, nil)
	if err := o.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "messages from Parts", func() bool { return countMessages(t, db, "Parts") == 2 })
	stopAndWait(t, o)

	if err := o.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if o.Status().State != status.Stopped {
		t.Fatalf("state = %s, want STOPPED", o.Status().State)
	}

	var gerr *GroupError
	select {
	case evt := <-events:
		var ok bool
		if gerr, ok = evt.Payload.(*GroupError); !ok {
			t.Fatalf("payload = %T", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no group_failed event")
	}
	if gerr.Group != "Absent" || !errors.Is(gerr, ErrGroupNotFound) {
		t.Fatalf("group error = %v", gerr)
	}
	if gerr.Screenshot == "" {
		t.Fatal("no diagnostic screenshot recorded")
	}
	if _, err := os.Stat(gerr.Screenshot); err != nil {
		t.Fatalf("screenshot file: %v", err)
	}
	if filepath.Dir(gerr.Screenshot) != cfg.DiagnosticsDir {
		t.Fatalf("screenshot in %s", filepath.Dir(gerr.Screenshot))
	}

	msgs, err := db.QueryMessages(store.MessageFilter{Group: "Parts", Order: store.OldestFirst})
	if err != nil {
		t.Fatal(err)
	}
	if msgs[0].Sender != "Jane" || msgs[0].Timestamp != "10:21, 14/03/2024" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if !msgs[0].SentAt.Equal(time.Date(2024, 3, 14, 10, 21, 0, 0, time.UTC)) {
		t.Errorf("sent_at = %v", msgs[0].SentAt)
	}
	if msgs[1].Text != ImagePost {
		t.Errorf("image post text = %q", msgs[1].Text)
	}
	pic, err := db.GetPicture(msgs[1].ID)
	if err != nil || string(pic) != string(browsertest.PNG) {
		t.Errorf("picture = %q, %v", pic, err)
	}
}

func TestRescrapeIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := db.InsertGroup("Parts"); err != nil {
		t.Fatal(err)
	}
	page := browsertest.New(layout)
	page.AddChat("Parts",
		browsertest.Message(layout, "[10:21, 14/03/2024] Jane: ", "Need a bumper"),
		browsertest.Message(layout, "[10:22, 14/03/2024] Tom: ", "Have one").WithQuote(layout, "Jane", "Need a bumper"),
	)

	o := New(fastConfig(t), db, openerFor(page), nil, nil, nil)
	if err := o.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "three visits", func() bool { return len(page.Opened()) >= 3 })
	stopAndWait(t, o)

	if n := countMessages(t, db, "Parts"); n != 2 {
		t.Fatalf("stored %d messages, want 2", n)
	}
	replies, err := db.QueryMessages(store.MessageFilter{RepliesOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || replies[0].RepliedToSender != "Jane" || replies[0].RepliedToText != "Need a bumper" {
		t.Fatalf("replies = %+v", replies)
	}
}

func TestStopInterruptsPacing(t *testing.T) {
	db := testDB(t)
	if err := db.InsertGroup("Parts"); err != nil {
		t.Fatal(err)
	}
	page := browsertest.New(layout)
	page.AddChat("Parts")

	cfg := fastConfig(t)
	cfg.InterGroup = time.Hour
	cfg.InterCycle = time.Hour
	o := New(cfg, db, openerFor(page), nil, nil, nil)
	if err := o.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first visit", func() bool { return len(page.Opened()) == 1 })

	start := time.Now()
	stopAndWait(t, o)
	if d := time.Since(start); d > time.Second {
		t.Fatalf("stop took %v", d)
	}
	if !page.Closed() {
		t.Fatal("browser session not closed")
	}
	if o.Err() != nil {
		t.Fatalf("Err() = %v", o.Err())
	}
}

func TestSessionLostIsFatal(t *testing.T) {
	db := testDB(t)
	if err := db.InsertGroup("Parts"); err != nil {
		t.Fatal(err)
	}
	page := browsertest.New(layout)
	page.Break(errors.New("websocket closed"))

	b := bus.New()
	sub := b.Subscribe(1, bus.MonitorFailed)
	defer sub.Close()
	events := sub.C

	o := New(fastConfig(t), db, openerFor(page), b, nil, nil)
	if err := o.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case <-o.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
	if !errors.Is(o.Err(), ErrSessionLost) {
		t.Fatalf("Err() = %v, want ErrSessionLost", o.Err())
	}
	if o.Status().State != status.Stopped {
		t.Fatalf("state = %s", o.Status().State)
	}
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("no monitor.failed event")
	}
}

func TestSearchScrollCap(t *testing.T) {
	tests := []struct {
		name     string
		position int
		found    bool
		scrolls  int
	}{
		{"visible", 0, true, 0},
		{"after ten scrolls", 10, true, 10},
		{"beyond the cap", 11, false, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.New(layout)
			for i := 0; i < tt.position; i++ {
				page.AddChat("filler")
			}
			page.AddChat("Target")
			page.SetVisible(1, 1)

			o := New(fastConfig(t), nil, nil, nil, nil, nil)
			_, err := o.search(context.Background(), page, "Target")
			if tt.found && err != nil {
				t.Fatalf("search: %v", err)
			}
			if !tt.found && !errors.Is(err, ErrGroupNotFound) {
				t.Fatalf("search = %v, want ErrGroupNotFound", err)
			}
			if page.Scrolls() != tt.scrolls {
				t.Fatalf("scrolls = %d, want %d", page.Scrolls(), tt.scrolls)
			}
		})
	}
}

func TestScrapeSkipsUnreadableRows(t *testing.T) {
	page := browsertest.New(layout)
	page.AddChat("Parts",
		&browsertest.Node{},
		browsertest.Message(layout, "not a meta prefix", "hello"),
		browsertest.Message(layout, "[10:21, 14/03/2024] Jane: ", ""),
		browsertest.Message(layout, "[10:22, 14/03/2024] Tom: ", "  Headlight for Note  "),
	)
	el, err := page.FindByText(context.Background(), "", "Parts")
	if err != nil {
		t.Fatal(err)
	}
	if err := el.Click(context.Background()); err != nil {
		t.Fatal(err)
	}

	msgs, err := scrapeRows(context.Background(), page, layout, "Parts", time.UTC, nopLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "Headlight for Note" || msgs[0].Sender != "Tom" || msgs[0].GroupName != "Parts" {
		t.Fatalf("message = %+v", msgs[0])
	}
}

var nopLogger = zap.NewNop()
