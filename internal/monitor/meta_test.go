package monitor

import (
	"testing"
	"time"
)

func TestParseMeta(t *testing.T) {
	tests := []struct {
		meta       string
		wantTS     string
		wantSender string
		wantOK     bool
	}{
		{"[10:21, 14/03/2024] Jane Doe: ", "10:21, 14/03/2024", "Jane Doe", true},
		{"[9:05 pm, 3/14/2024] +254 712 345 678: ", "9:05 pm, 3/14/2024", "+254 712 345 678", true},
		{"[10:21, 14/03/2024] Spares: Nairobi: ", "10:21, 14/03/2024", "Spares: Nairobi", true},
		{"10:21 Jane: ", "", "", false},
		{"[10:21, 14/03/2024] : ", "", "", false},
		{"[10:21", "", "", false},
	}
	for _, tt := range tests {
		ts, sender, ok := parseMeta(tt.meta)
		if ok != tt.wantOK || ts != tt.wantTS || sender != tt.wantSender {
			t.Errorf("parseMeta(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.meta, ts, sender, ok, tt.wantTS, tt.wantSender, tt.wantOK)
		}
	}
}

func TestParseSent(t *testing.T) {
	tests := []struct {
		ts   string
		want time.Time
	}{
		{"10:21, 14/03/2024", time.Date(2024, 3, 14, 10, 21, 0, 0, time.UTC)},
		{"10:21, 3/4/2024", time.Date(2024, 4, 3, 10, 21, 0, 0, time.UTC)},
		{"9:05 pm, 14/3/2024", time.Date(2024, 3, 14, 21, 5, 0, 0, time.UTC)},
		{"9:05 PM, 3/14/2024", time.Date(2024, 3, 14, 21, 5, 0, 0, time.UTC)},
		{"yesterday", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseSent(tt.ts, time.UTC); !got.Equal(tt.want) {
			t.Errorf("parseSent(%q) = %v, want %v", tt.ts, got, tt.want)
		}
	}
}

func TestFileSafe(t *testing.T) {
	if got := fileSafe("Parts & Spares/KE"); got != "Parts___Spares_KE" {
		t.Errorf("fileSafe() = %q", got)
	}
}
