package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestViewBindingShadowsGlobal(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'r', Label: "r", Description: "Refresh", Visible: true,
		Handler: func() { got = "global" }})
	r.AddView("replies", &Action{Key: tcell.KeyRune, Rune: 'r', Label: "r", Description: "Reload replies", Visible: true,
		Handler: func() { got = "view" }})

	ev := tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)
	if !r.HandleEvent("replies", ev) || got != "view" {
		t.Errorf("replies view: handled by %q, want view", got)
	}
	if !r.HandleEvent("popular", ev) || got != "global" {
		t.Errorf("popular view: handled by %q, want global", got)
	}
	if r.HandleEvent("popular", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Error("unbound key reported as handled")
	}
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Quit", Visible: true, Handler: func() {}})
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'x', Label: "x", Description: "Hidden", Handler: func() {}})
	r.AddView("matches", &Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Details", Visible: true, Handler: func() {}})

	hints := r.Hints("matches")
	if len(hints) != 2 || hints[0].Key != "Enter" || hints[1].Key != "q" {
		t.Errorf("hints = %+v, want Enter then q", hints)
	}
}

func TestMatchesSpecialKey(t *testing.T) {
	a := &Action{Key: tcell.KeyEscape}
	if !a.Matches(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Escape did not match")
	}
	if a.Matches(tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone)) {
		t.Error("rune matched a special-key action")
	}
}
