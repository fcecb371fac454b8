package browser

import (
	"context"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// RenderQR renders a login code as a block of terminal characters.
func RenderQR(code string) (string, error) {
	q, err := qrcode.New(code, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	return q.ToSmallString(false), nil
}

// WaitForLogin polls until the chat list is present. While the client shows
// a login QR code, onQR is called with each new code so it can be shown to
// the user. It returns ctx.Err() if the user never scans.
func WaitForLogin(ctx context.Context, s Session, l Layout, interval time.Duration, onQR func(code string)) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		if els, err := s.Query(ctx, l.ChatList); err == nil && len(els) > 0 {
			return nil
		}
		if els, err := s.Query(ctx, l.QRCode); err == nil && len(els) > 0 {
			code, ok, err := els[0].Attribute(ctx, l.QRAttr)
			if err == nil && ok && code != "" && code != last {
				last = code
				if onQR != nil {
					onQR(code)
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
