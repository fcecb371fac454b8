package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestGroups(t *testing.T) {
	db := testDB(t)

	for _, name := range []string{"Spares Nairobi", "Toyota Parts KE", "Mombasa Dealers"} {
		if err := db.InsertGroup(name); err != nil {
			t.Fatalf("InsertGroup(%q) error = %v", name, err)
		}
	}

	err := db.InsertGroup("Spares Nairobi")
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate InsertGroup error = %v, want ErrDuplicateKey", err)
	}
	if err := db.InsertGroup("   "); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank InsertGroup error = %v, want ErrInvalid", err)
	}

	if err := db.DeleteGroup("Toyota Parts KE"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteGroup("never added"); err != nil {
		t.Errorf("DeleteGroup(unknown) error = %v, want nil", err)
	}

	groups, err := db.ListGroups()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	if len(names) != 2 || names[0] != "Spares Nairobi" || names[1] != "Mombasa Dealers" {
		t.Errorf("groups = %v, want [Spares Nairobi Mombasa Dealers] in insertion order", names)
	}
}

func TestInsertMessageIfAbsentIdempotent(t *testing.T) {
	db := testDB(t)

	msg := &Message{GroupName: "Spares", Sender: "+254 712 345678", Text: "need bumper", Timestamp: "10:32, 15/10/2026"}
	created, err := db.InsertMessageIfAbsent(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !created || msg.ID == 0 {
		t.Fatalf("first insert created=%v id=%d, want created with id", created, msg.ID)
	}

	again := &Message{GroupName: "Spares", Sender: "+254 712 345678", Text: "need bumper", Timestamp: "10:32, 15/10/2026", IsReply: true}
	created, err = db.InsertMessageIfAbsent(again)
	if err != nil {
		t.Fatalf("re-insert error = %v, want nil", err)
	}
	if created {
		t.Error("re-insert of same tuple reported created=true")
	}

	count, err := db.MessageCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("message count = %d, want 1", count)
	}

	// A different timestamp is a different message.
	other := *msg
	other.ID = 0
	other.Timestamp = "10:33, 15/10/2026"
	if created, err := db.InsertMessageIfAbsent(&other); err != nil || !created {
		t.Errorf("insert with new timestamp created=%v err=%v, want created", created, err)
	}
}

func TestInsertMessageRequiresIdentity(t *testing.T) {
	db := testDB(t)
	_, err := db.InsertMessageIfAbsent(&Message{GroupName: "g", Text: "x", Timestamp: "t"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestQueryMessages(t *testing.T) {
	db := testDB(t)

	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	fixtures := []*Message{
		{GroupName: "A", Sender: "s1", Text: "first", Timestamp: "09:00", SentAt: base},
		{GroupName: "A", Sender: "s2", Text: "reply to me", Timestamp: "09:05", SentAt: base.Add(5 * time.Minute),
			IsReply: true, RepliedToSender: "+254 712 345678", RepliedToText: "need bumper"},
		{GroupName: "B", Sender: "s3", Text: "picture", Timestamp: "09:02", SentAt: base.Add(2 * time.Minute), Picture: []byte{0x89, 'P', 'N', 'G'}},
	}
	for _, m := range fixtures {
		if _, err := db.InsertMessageIfAbsent(m); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.QueryMessages(MessageFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Text != "first" {
		t.Fatalf("oldest-first listing = %+v", all)
	}

	after, err := db.QueryMessages(MessageFilter{AfterID: all[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 2 {
		t.Errorf("AfterID listing returned %d rows, want 2", len(after))
	}

	newest, err := db.QueryMessages(MessageFilter{Order: NewestFirst, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(newest) != 2 || newest[0].Text != "reply to me" || newest[1].Text != "picture" {
		t.Errorf("newest-first listing = %v, %v", newest[0].Text, newest[1].Text)
	}

	replies, err := db.QueryMessages(MessageFilter{RepliesOnly: true, RepliedTo: "712"})
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !replies[0].IsReply || replies[0].RepliedToText != "need bumper" {
		t.Errorf("replies = %+v", replies)
	}

	withPic, err := db.QueryMessages(MessageFilter{WithPicture: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(withPic) != 1 {
		t.Fatalf("WithPicture returned %d rows, want 1", len(withPic))
	}
	if !withPic[0].HasPicture || withPic[0].Picture != nil {
		t.Errorf("picture row HasPicture=%v Picture=%v, want flag only", withPic[0].HasPicture, withPic[0].Picture)
	}
	pic, err := db.GetPicture(withPic[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(pic) != "\x89PNG" {
		t.Errorf("picture = %q", pic)
	}
	if _, err := db.GetPicture(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPicture(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCatalog(t *testing.T) {
	db := testDB(t)

	item := &CatalogItem{Product: "Bumper", Make: "Toyota", Type: "Harrier", Price: 15000}
	if err := db.InsertCatalogItem(item); err != nil {
		t.Fatal(err)
	}
	if item.ID == 0 {
		t.Error("InsertCatalogItem did not assign an id")
	}

	if err := db.InsertCatalogItem(&CatalogItem{Product: "", Price: 10}); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing product error = %v, want ErrInvalid", err)
	}
	if err := db.InsertCatalogItem(&CatalogItem{Product: "Mirror", Price: -1}); !errors.Is(err, ErrInvalid) {
		t.Errorf("negative price error = %v, want ErrInvalid", err)
	}

	items, err := db.ListCatalogItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Type != "Harrier" || items[0].Price != 15000 {
		t.Errorf("catalog = %+v", items)
	}

	if err := db.DeleteCatalogItem(item.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteCatalogItem(item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestLocalFraudReportDuplicateSuppressed(t *testing.T) {
	db := testDB(t)

	first := &FraudReport{PhoneNumber: "+254712345678", Reason: "took deposit, never delivered", ReportedBy: "me"}
	inserted, err := db.InsertFraudReport(first)
	if err != nil || !inserted {
		t.Fatalf("first report inserted=%v err=%v", inserted, err)
	}

	// Same number in national format, different reason.
	second := &FraudReport{PhoneNumber: "0712 345 678", Reason: "conman", ReportedBy: "me"}
	inserted, err = db.InsertFraudReport(second)
	if err != nil {
		t.Fatalf("duplicate report error = %v, want nil", err)
	}
	if inserted {
		t.Error("duplicate report should be ignored")
	}

	reports, err := db.ListFraudReports()
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if reports[0].Reason != "took deposit, never delivered" || reports[0].Scope != ScopeLocal {
		t.Errorf("report = %+v, want first write to win", reports[0])
	}

	found, err := db.FindFraudReport("712345678")
	if err != nil || found == nil {
		t.Fatalf("FindFraudReport = %v, %v", found, err)
	}

	if _, err := db.InsertFraudReport(&FraudReport{PhoneNumber: "not a number"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("invalid phone error = %v, want ErrInvalid", err)
	}
}

func TestCommunityStore(t *testing.T) {
	c, err := OpenCommunity(filepath.Join(t.TempDir(), "community.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	for _, reason := range []string{"scammer", "never delivered"} {
		if _, err := c.InsertFraudReport(ctx, &FraudReport{PhoneNumber: "+254712345678", Reason: reason, ReportedBy: "AI(+254 700 000001)"}); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := c.ListFraudReports(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d community reports, want 1", len(reports))
	}
	r := reports[0]
	if r.Reason != "scammer" || r.Scope != ScopeCommunity {
		t.Errorf("report = %+v", r)
	}
	if r.ReportedAt.IsZero() {
		t.Error("community store should default reported_at")
	}

	set, err := c.PhoneSet(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := set["+254712345678"]; !ok || len(set) != 1 {
		t.Errorf("phone set = %v", set)
	}
}

func TestCallLogs(t *testing.T) {
	db := testDB(t)

	older := &CallLog{CustomerName: "Wanjiru", Notes: "wants headlights", LoggedAt: time.Now().Add(-time.Hour)}
	newer := &CallLog{PhoneNumber: "0712345678", Notes: "call back friday"}
	for _, l := range []*CallLog{older, newer} {
		if err := db.InsertCallLog(l); err != nil {
			t.Fatal(err)
		}
	}

	if err := db.InsertCallLog(&CallLog{Notes: "anonymous"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("no name/phone error = %v, want ErrInvalid", err)
	}
	if err := db.InsertCallLog(&CallLog{CustomerName: "Otieno", Notes: "  "}); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank notes error = %v, want ErrInvalid", err)
	}

	logs, err := db.ListCallLogs()
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].Notes != "call back friday" {
		t.Errorf("call logs = %+v, want newest first", logs)
	}
}

func TestCursor(t *testing.T) {
	db := testDB(t)

	v, err := db.GetCursor("fraud.last_checked_id")
	if err != nil || v != 0 {
		t.Fatalf("initial cursor = %d, %v; want 0", v, err)
	}
	if err := db.SetCursor("fraud.last_checked_id", 42); err != nil {
		t.Fatal(err)
	}
	if err := db.SetCursor("fraud.last_checked_id", 57); err != nil {
		t.Fatal(err)
	}
	v, err = db.GetCursor("fraud.last_checked_id")
	if err != nil || v != 57 {
		t.Errorf("cursor = %d, %v; want 57", v, err)
	}
}
