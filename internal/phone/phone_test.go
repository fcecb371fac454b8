package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"canonical", "+254712345678", "+254712345678", true},
		{"spaced international", "+254 712 345 678", "+254712345678", true},
		{"national with zero", "0712345678", "+254712345678", true},
		{"national dashed", "0712-345-678", "+254712345678", true},
		{"bare subscriber", "712345678", "+254712345678", true},
		{"airtel 01 prefix", "0110345678", "+254110345678", true},
		{"country code without plus", "254712345678", "+254712345678", true},
		{"double zero prefix", "00254712345678", "+254712345678", true},
		{"other country", "+44 20 7946 0958", "+442079460958", true},
		{"bidi marks from web page", "\u202a+254 712 345678\u202c", "+254712345678", true},
		{"kenyan too short", "+25471234567", "", false},
		{"name", "John Kamau", "", false},
		{"empty", "", "", false},
		{"short national", "12345", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal("0712 345 678", "+254712345678") {
		t.Error("national and international forms should be equal")
	}
	if Equal("0712345678", "0712345679") {
		t.Error("different numbers should not be equal")
	}
	if Equal("bob", "bob") {
		t.Error("non-numbers never compare equal")
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		identifier string
		me         string
		want       bool
	}{
		{"+254 712 345678", "0712345678", true},
		{"+254 712 345679", "0712345678", false},
		// A partial number is not a match once both sides are phones.
		{"+254 712 345678", "+25471234567", false},
		{"You", "you", true},
		{"Kamau Spares", "kamau", true},
		{"", "kamau", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.identifier, tt.me); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.identifier, tt.me, got, tt.want)
		}
	}
}
