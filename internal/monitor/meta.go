package monitor

import (
	"strings"
	"time"
)

// ImagePost is stored as the text of messages that carry only a picture.
const ImagePost = "[Image Post]"

// sentLayouts are the date orders the web client uses, day-first locales
// tried before month-first ones.
var sentLayouts = []string{
	"15:04, 2/1/2006",
	"3:04 PM, 2/1/2006",
	"15:04, 1/2/2006",
	"3:04 PM, 1/2/2006",
	"15:04, 2006-01-02",
	"15:04, 2.1.2006",
}

// parseMeta splits the prefix the client renders before each message,
// "[10:21, 14/03/2024] Jane Doe: ", into its display timestamp and sender.
func parseMeta(meta string) (timestamp, sender string, ok bool) {
	meta = strings.TrimSpace(meta)
	if !strings.HasPrefix(meta, "[") {
		return "", "", false
	}
	end := strings.IndexByte(meta, ']')
	if end < 0 {
		return "", "", false
	}
	timestamp = strings.TrimSpace(meta[1:end])
	rest := strings.TrimSpace(meta[end+1:])
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		rest = rest[:i]
	}
	sender = strings.TrimSpace(rest)
	if timestamp == "" || sender == "" {
		return "", "", false
	}
	return timestamp, sender, true
}

// parseSent interprets a display timestamp in loc. The zero time means the
// format was not recognised; ordering then falls back to scrape time.
func parseSent(timestamp string, loc *time.Location) time.Time {
	ts := strings.ToUpper(strings.Join(strings.Fields(timestamp), " "))
	for _, layout := range sentLayouts {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
