package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WithRetry wraps m so failed calls are retried with exponential backoff.
// Only transport errors are retried; a reply that parses badly is returned
// as-is. Context cancellation stops retrying immediately.
func WithRetry(m Model, maxRetries int, baseBackoff time.Duration, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ModelFunc(func(ctx context.Context, prompt string) (string, error) {
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			out, err := m.Generate(ctx, prompt)
			if err == nil {
				return out, nil
			}
			lastErr = err

			if ctx.Err() != nil {
				return "", lastErr
			}
			if attempt < maxRetries {
				wait := baseBackoff * (1 << uint(attempt))
				logger.Warn("retrying model call",
					zap.Int("attempt", attempt+1),
					zap.Int("max_retries", maxRetries),
					zap.Duration("backoff", wait),
					zap.Error(err))
				select {
				case <-ctx.Done():
					return "", lastErr
				case <-time.After(wait):
				}
			}
		}
		return "", lastErr
	})
}
