package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/tui/ui"
)

// StatusBar displays the profile and monitor status.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	status  *agentv1.MonitorStatusResponse
	flash   string
	isErr   bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetStatus updates the monitor status display.
func (sb *StatusBar) SetStatus(st *agentv1.MonitorStatusResponse) {
	sb.status = st
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string, isErr bool) {
	sb.flash = msg
	sb.isErr = isErr
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	state := "?"
	if st := sb.status; st != nil {
		state = st.State
		if st.Group != "" {
			state += " " + tview.Escape(sb.status.Group)
		}
		state += fmt.Sprintf(" | %d msgs", st.Messages)
		if st.LastError != "" {
			state += fmt.Sprintf(" | [%s]%s[-]", ui.ColorName(sb.theme.FlashErrColor), tview.Escape(st.LastError))
		}
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", sb.profile, state, time.Now().Format("15:04"))
	if sb.flash != "" {
		color := sb.theme.FlashInfoColor
		if sb.isErr {
			color = sb.theme.FlashErrColor
		}
		line += fmt.Sprintf(" | [%s]%s[-]", ui.ColorName(color), tview.Escape(sb.flash))
	}

	_, _ = fmt.Fprint(sb, line)
}
