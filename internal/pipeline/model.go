// Package pipeline turns free-text chat messages into classifications,
// product attributes, fraud findings and catalog matches by prompting a
// remote text model. None of its operations return errors: a failed or
// malformed model reply degrades to the operation's neutral result.
package pipeline

import "context"

// Model is a remote text-understanding service.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
