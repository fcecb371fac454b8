package views

import (
	"strings"

	"github.com/rivo/tview"
)

// displayText prepares chat text for a tview widget. Emoji modifiers that
// tcell measures wrongly are dropped, tabs become spaces, other control
// characters except newline are removed, and square brackets are escaped
// so a message cannot inject color tags.
func displayText(s string) string {
	return tview.Escape(strings.Map(displayRune, s))
}

func displayRune(r rune) rune {
	switch {
	case r == '\t':
		return ' '
	case r == '\n':
		return r
	case r < 0x20, r == 0x7F:
		return -1
	case r == 0x200D: // zero width joiner
		return -1
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return -1
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0100 && r <= 0xE01EF: // variation selectors
		return -1
	}
	return r
}
