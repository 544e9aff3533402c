// Package model abstracts the language-model backend. The pipeline depends
// only on Client; the Gemini implementation lives beside it so tests can
// substitute a fake.
package model

import (
	"context"
	"errors"
)

// ErrUnavailable marks transport, quota, and auth failures. The pipeline
// treats it as a signal to fall back to offline analysis rather than fail
// the run.
var ErrUnavailable = errors.New("model unavailable")

// Client produces a completion for a prompt. Implementations must honor the
// context deadline.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
