package engine

import (
	"log/slog"

	"github.com/talgya/hexfront/internal/game"
)

// Subscribe returns a channel receiving every game event from now on and a
// function that ends the subscription. Slow subscribers miss events rather
// than stall the game.
func (e *Engine) Subscribe(buffer int) (<-chan game.Event, func()) {
	ch := make(chan game.Event, buffer)
	e.subMu.Lock()
	e.subscribers[ch] = struct{}{}
	e.subMu.Unlock()

	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
	}
}

func (e *Engine) publish(ev game.Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			slog.Debug("subscriber lagging, event dropped", "category", ev.Category)
		}
	}
}
