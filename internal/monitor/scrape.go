package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ebosoh/sales-agent/internal/browser"
	"github.com/ebosoh/sales-agent/internal/store"
)

// scrapeRows reads the rendered message rows of the open chat. Rows that
// cannot be read are skipped; an error is returned only when the row list
// itself is unavailable.
func scrapeRows(ctx context.Context, s browser.Session, l browser.Layout, group string, loc *time.Location, logger *zap.Logger) ([]store.Message, error) {
	rows, err := s.Query(ctx, l.MessageRow)
	if err != nil {
		return nil, fmt.Errorf("read message rows: %w", err)
	}

	now := time.Now()
	var out []store.Message
	for i, row := range rows {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		m, ok := readRow(ctx, row, l, logger)
		if !ok {
			logger.Debug("skipping unreadable row", zap.String("group", group), zap.Int("row", i))
			continue
		}
		m.GroupName = group
		m.SentAt = parseSent(m.Timestamp, loc)
		m.ScrapedAt = now
		out = append(out, m)
	}
	return out, nil
}

func readRow(ctx context.Context, row browser.Element, l browser.Layout, logger *zap.Logger) (store.Message, bool) {
	var m store.Message

	meta := first(ctx, row, l.Meta)
	if meta == nil {
		return m, false
	}
	raw, ok, err := meta.Attribute(ctx, l.MetaAttr)
	if err != nil || !ok {
		return m, false
	}
	if m.Timestamp, m.Sender, ok = parseMeta(raw); !ok {
		return m, false
	}

	if img := first(ctx, row, l.Image); img != nil {
		pic, err := img.Screenshot(ctx)
		if err != nil {
			logger.Debug("image capture failed", zap.Error(err))
		} else {
			m.Picture = pic
		}
	}

	if el := first(ctx, row, l.Text); el != nil {
		if text, err := el.Text(ctx); err == nil {
			m.Text = strings.TrimSpace(text)
		}
	}
	if m.Text == "" {
		if len(m.Picture) == 0 {
			return m, false
		}
		m.Text = ImagePost
	}

	if quoted := first(ctx, row, l.Quoted); quoted != nil {
		m.IsReply = true
		parts, err := quoted.Query(ctx, l.QuotedPart)
		if err == nil && len(parts) > 1 {
			if sender, err := parts[0].Text(ctx); err == nil {
				m.RepliedToSender = strings.TrimSpace(sender)
			}
			if text, err := parts[1].Text(ctx); err == nil {
				m.RepliedToText = strings.TrimSpace(text)
			}
		}
	}
	return m, true
}

func first(ctx context.Context, el browser.Element, selector string) browser.Element {
	els, err := el.Query(ctx, selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	return els[0]
}
