package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/tui/ui"
)

// EventLog shows the daemon's status stream, newest at the bottom.
type EventLog struct {
	*tview.TextView
	theme *ui.Theme
}

// NewEventLog creates the status log view.
func NewEventLog(theme *ui.Theme) *EventLog {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Status ")
	tv.SetTitleColor(theme.TitleColor)
	return &EventLog{TextView: tv, theme: theme}
}

// Update replaces the log with events.
func (l *EventLog) Update(events []*agentv1.StatusEvent) {
	l.Clear()
	for _, evt := range events {
		_, _ = fmt.Fprintln(l, l.line(evt))
	}
	l.ScrollToEnd()
}

func (l *EventLog) line(evt *agentv1.StatusEvent) string {
	ts := time.UnixMilli(evt.OccurredAtUnixMs).Format("15:04:05")
	text := displayText(evt.Text)
	switch evt.Kind {
	case "monitor.failed", "monitor.group_failed":
		text = fmt.Sprintf("[%s]%s[-]", ui.ColorName(l.theme.FlashErrColor), text)
	case "fraud.detected":
		text = fmt.Sprintf("[%s]%s[-]", ui.ColorName(l.theme.FlaggedColor), text)
	case "monitor.login":
		text = "login required: scan the QR code"
	}
	return fmt.Sprintf("[::d]%s[-:-:-] %s", ts, text)
}
