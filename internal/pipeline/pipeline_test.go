package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ebosoh/sales-agent/internal/store"
)

// scriptedModel answers by matching a marker in the prompt.
type scriptedModel struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	calls   int
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	for marker, reply := range m.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", nil
}

func (m *scriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestClassify(t *testing.T) {
	tests := []struct {
		reply string
		want  Class
	}{
		{"BUYING_REQUEST", BuyingRequest},
		{"  buying_request.\n", BuyingRequest},
		{"`BUYING_REQUEST`", BuyingRequest},
		{"OTHER", Other},
		{"I think this is a BUYING_REQUEST", Other},
		{"", Other},
	}
	for _, tt := range tests {
		m := &scriptedModel{replies: map[string]string{"classifier": tt.reply}}
		p := New(m, nil, nil)
		if got := p.Classify(context.Background(), "need a bumper"); got != tt.want {
			t.Errorf("reply %q: got %s, want %s", tt.reply, got, tt.want)
		}
	}
}

func TestClassifyModelError(t *testing.T) {
	p := New(&scriptedModel{err: errors.New("boom")}, nil, nil)
	if got := p.Classify(context.Background(), "x"); got != Other {
		t.Fatalf("got %s, want Other", got)
	}
}

func TestExtract(t *testing.T) {
	reply := "Sure!\n```json\n{\"product\": \"Bumper\", \"make\": \"Toyota\", \"type\": \"Harrier\", \"year\": 2015, \"price_ksh\": \"15,000\"}\n```"
	p := New(&scriptedModel{replies: map[string]string{"data extractor": reply}}, nil, nil)

	e := p.Extract(context.Background(), "harrier bumper 2015")
	want := Extraction{OK: true, Product: "Bumper", Make: "Toyota", Type: "Harrier", Year: "2015", PriceKSh: 15000, OtherDetails: NotAvailable}
	if e != want {
		t.Fatalf("got %+v, want %+v", e, want)
	}
}

func TestExtractNoData(t *testing.T) {
	for _, reply := range []string{"no idea", "[1,2]", `{"product": `} {
		p := New(&scriptedModel{replies: map[string]string{"data extractor": reply}}, nil, nil)
		if e := p.Extract(context.Background(), "hi"); e.OK {
			t.Errorf("reply %q: expected no data, got %+v", reply, e)
		}
	}
}

type mapCache struct {
	m    map[string]Extraction
	puts int
}

func (c *mapCache) GetExtraction(_ context.Context, text string) (Extraction, bool, error) {
	e, ok := c.m[text]
	return e, ok, nil
}

func (c *mapCache) PutExtraction(_ context.Context, text string, e Extraction) error {
	c.puts++
	c.m[text] = e
	return nil
}

func TestExtractUsesCache(t *testing.T) {
	m := &scriptedModel{replies: map[string]string{"data extractor": `{"product": "Mirror"}`}}
	c := &mapCache{m: map[string]Extraction{}}
	p := New(m, c, nil)

	first := p.Extract(context.Background(), "mirror")
	second := p.Extract(context.Background(), "mirror")
	if first != second || !first.OK {
		t.Fatalf("unexpected extractions %+v %+v", first, second)
	}
	if m.Calls() != 1 {
		t.Fatalf("expected 1 model call, got %d", m.Calls())
	}
	if c.puts != 1 {
		t.Fatalf("expected 1 cache write, got %d", c.puts)
	}
}

func TestDetectFraud(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		want   FraudFinding
		wantOK bool
	}{
		{"canonical", `{"phone_number": "+254712345678", "reason": "conman"}`, FraudFinding{"+254712345678", "conman"}, true},
		{"local format", `{"phone_number": "0712 345 678", "reason": "scammer"}`, FraudFinding{"+254712345678", "scammer"}, true},
		{"null", `{"phone_number": null, "reason": null}`, FraudFinding{}, false},
		{"too short", `{"phone_number": "12345", "reason": "x"}`, FraudFinding{}, false},
		{"prose", "no fraud here", FraudFinding{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&scriptedModel{replies: map[string]string{"security analyst": tt.reply}}, nil, nil)
			got, ok := p.DetectFraud(context.Background(), "msg")
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("got (%+v, %v), want (%+v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchEmptyCatalogMakesNoCall(t *testing.T) {
	m := &scriptedModel{}
	p := New(m, nil, nil)
	if got := p.Match(context.Background(), "need bumper", nil); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
	if m.Calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", m.Calls())
	}
}

func TestMatchMapsBackToCatalog(t *testing.T) {
	catalog := []store.CatalogItem{
		{ID: 1, Product: "Bumper", Make: "Toyota", Type: "Harrier", Year: "2015", Price: 15000},
		{ID: 2, Product: "Headlight", Make: "Nissan", Type: "Note", Price: 8000},
	}
	tests := []struct {
		name  string
		reply string
		want  []int64
	}{
		{"by id", `[{"id": 1, "product": "Bumper"}]`, []int64{1}},
		{"fenced", "```json\n[{\"id\": 2}]\n```", []int64{2}},
		{"by fields", `[{"product": "bumper", "make": "toyota", "type": "harrier", "year": "2015"}]`, []int64{1}},
		{"invented item dropped", `[{"id": 9, "product": "Wheel"}]`, nil},
		{"duplicates collapsed", `[{"id": 1}, {"id": 1}]`, []int64{1}},
		{"empty", `[]`, nil},
		{"garbage", `sorry`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&scriptedModel{replies: map[string]string{"matching agent": tt.reply}}, nil, nil)
			got := p.Match(context.Background(), "need harrier bumper", catalog)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id || got[i].Price != catalog[id-1].Price {
					t.Fatalf("item %d: got %+v, want id %d", i, got[i], id)
				}
			}
		})
	}
}

func TestWithRetry(t *testing.T) {
	failures := 2
	calls := 0
	m := ModelFunc(func(context.Context, string) (string, error) {
		calls++
		if calls <= failures {
			return "", errors.New("unavailable")
		}
		return "ok", nil
	})

	out, err := WithRetry(m, 3, time.Millisecond, nil).Generate(context.Background(), "p")
	if err != nil || out != "ok" {
		t.Fatalf("got (%q, %v)", out, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	m := ModelFunc(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("down")
	})
	if _, err := WithRetry(m, 2, time.Millisecond, nil).Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	m := ModelFunc(func(context.Context, string) (string, error) {
		calls++
		cancel()
		return "", errors.New("down")
	})
	if _, err := WithRetry(m, 5, time.Hour, nil).Generate(ctx, "p"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
