package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"
)

// stripFences removes markdown code fences the model sometimes wraps JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// findJSON returns the outermost balanced JSON value starting with open
// (either '{' or '['), skipping any prose around it. It respects string
// literals so braces inside quoted text do not confuse the scan.
func findJSON(s string, open byte) (string, bool) {
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}
	for start := strings.IndexByte(s, open); start >= 0; {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case open:
				depth++
			case closer:
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					i = len(s)
				}
			}
		}
		next := strings.IndexByte(s[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// decodeObject finds the first JSON object in a model reply and decodes it.
func decodeObject(reply string, v any) bool {
	raw, ok := findJSON(stripFences(reply), '{')
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// decodeArray finds the first JSON array in a model reply and decodes it.
func decodeArray(reply string, v any) bool {
	raw, ok := findJSON(stripFences(reply), '[')
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

// looseInt accepts a JSON number, a numeric string ("15,000", "KSh 15000")
// or null. Anything unparseable becomes 0.
type looseInt int64

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = looseInt(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*n = 0
		return nil
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if r == '.' {
			break
		}
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		v = 0
	}
	*n = looseInt(v)
	return nil
}

func orNA(s looseString) string {
	v := strings.TrimSpace(string(s))
	if v == "" || strings.EqualFold(v, "null") {
		return NotAvailable
	}
	return v
}
