package ai

import (
	"context"
	"time"
)

// Pacer spaces out AI actions so a watcher can follow them. Pause returns an
// error when the turn should be abandoned.
type Pacer interface {
	Pause(ctx context.Context) error
}

// NoDelay runs the AI as fast as it can decide.
type NoDelay struct{}

// Pause only reports cancellation.
func (NoDelay) Pause(ctx context.Context) error {
	return ctx.Err()
}

// Delay waits a fixed duration between actions.
type Delay time.Duration

// Pause blocks for the delay or until ctx is done.
func (d Delay) Pause(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PacerFunc adapts a function to the Pacer interface.
type PacerFunc func(ctx context.Context) error

// Pause calls f.
func (f PacerFunc) Pause(ctx context.Context) error {
	return f(ctx)
}
