// Package brain provides the text-generation collaborator used for augmented
// question generation and answer evaluation.
package brain

import "context"

// Client produces a single completion for a prompt. Implementations may block;
// callers bound each call with a context timeout.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
