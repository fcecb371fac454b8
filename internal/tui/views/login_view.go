package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ebosoh/sales-agent/internal/tui/ui"
)

// LoginView displays the QR code that links the browser session.
type LoginView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewLoginView creates a new login view.
func NewLoginView(theme *ui.Theme) *LoginView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Login Required ")
	tv.SetTitleColor(theme.TitleColor)

	return &LoginView{TextView: tv, theme: theme}
}

// ShowQR renders a login code as a scannable block.
func (lv *LoginView) ShowQR(code string) {
	lv.Clear()
	_, _ = fmt.Fprintf(lv, "\n  Scan with WhatsApp > Linked devices:\n\n%s\n  [::d]Waiting for login...", renderQR(code))
}

// ShowMessage displays a status message.
func (lv *LoginView) ShowMessage(msg string) {
	lv.Clear()
	_, _ = fmt.Fprintf(lv, "\n\n%s", tview.Escape(msg))
}

// renderQR draws the code with Unicode half blocks, two modules per cell.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}

	bitmap := qr.Bitmap()
	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
