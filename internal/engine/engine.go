// Package engine runs a match. The Engine is the only writer of its game:
// actions arrive as closures over a channel and execute one at a time on the
// goroutine that called Run, and AI turns play out on that same goroutine.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexfront/internal/ai"
	"github.com/talgya/hexfront/internal/game"
)

var (
	// ErrNotPlayerTurn rejects a human action outside the human's turn.
	ErrNotPlayerTurn = errors.New("not a human player's turn")
	// ErrStopped is returned once Run has returned.
	ErrStopped = errors.New("engine stopped")
	// ErrMatchOver rejects actions after the turn limit ended the match.
	ErrMatchOver = errors.New("match is over")

	errRestarted = errors.New("match restarted")
)

// Options tune pacing and match length.
type Options struct {
	AIDelay      time.Duration // Pause between AI unit actions
	AIStartDelay time.Duration // Pause before an AI turn begins
	MaxTurns     int           // 0 = unlimited; otherwise the match is drawn after this turn
}

type requestKind uint8

const (
	requestAction requestKind = iota
	requestRestart
	requestReset
)

type request struct {
	kind  requestKind
	fn    func(g *game.Game) error
	reply chan error
}

// Engine drives one game at a time.
type Engine struct {
	mu   sync.RWMutex
	game *game.Game
	ai   *ai.Player
	opts Options

	actions chan request
	done    chan struct{}

	// Guarded by mu.
	startedAt time.Time
	finished  bool
	lastTurn  int

	subMu       sync.Mutex
	subscribers map[chan game.Event]struct{}

	// OnGameOver, when set, is called on the engine goroutine after a match
	// ends, outside the lock.
	OnGameOver func(Outcome)
}

// New wraps an initialised game.
func New(g *game.Game, opts Options) *Engine {
	e := &Engine{
		game:        g,
		opts:        opts,
		actions:     make(chan request),
		done:        make(chan struct{}),
		startedAt:   time.Now(),
		lastTurn:    g.Turn,
		subscribers: make(map[chan game.Event]struct{}),
	}
	e.ai = ai.New(ai.PacerFunc(func(ctx context.Context) error {
		return e.pause(ctx, e.opts.AIDelay)
	}))
	g.OnEvent = e.publish
	return e
}

// Run processes actions and plays AI turns until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("engine started", "max_turns", e.opts.MaxTurns, "ai_delay", e.opts.AIDelay)
	defer close(e.done)

	for {
		if ctx.Err() != nil {
			break
		}
		if e.aiPending() {
			e.playAITurn(ctx)
			continue
		}
		select {
		case <-ctx.Done():
		case req := <-e.actions:
			e.handle(req)
		}
	}

	e.View(func(g *game.Game) {
		slog.Info("engine stopped", "turn", g.Turn, "phase", g.Phase)
	})
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// View runs fn with read access to the game. fn must not keep references
// past its return or mutate anything.
func (e *Engine) View(fn func(g *game.Game)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.game)
}

// Act submits a human action. It fails with ErrNotPlayerTurn unless the game
// is in a human player's turn; otherwise it returns fn's error.
func (e *Engine) Act(ctx context.Context, fn func(g *game.Game) error) error {
	return e.submit(ctx, request{kind: requestAction, fn: fn})
}

// Restart starts a fresh match on a newly generated map. An AI turn in
// progress is abandoned.
func (e *Engine) Restart(ctx context.Context) error {
	return e.submit(ctx, request{kind: requestRestart})
}

// Reset returns the game to the setup phase.
func (e *Engine) Reset(ctx context.Context) error {
	return e.submit(ctx, request{kind: requestReset})
}

func (e *Engine) submit(ctx context.Context, req request) error {
	req.reply = make(chan error, 1)
	select {
	case e.actions <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrStopped
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handle executes one request. The lock must not be held.
func (e *Engine) handle(req request) {
	e.mu.Lock()
	var err error
	switch req.kind {
	case requestRestart:
		err = e.restartLocked()
	case requestReset:
		e.game.Reset()
		e.finished = false
		slog.Info("game reset")
	default:
		err = e.actLocked(req.fn)
	}
	out := e.settleLocked()
	e.mu.Unlock()

	req.reply <- err
	e.report(out)
}

func (e *Engine) actLocked(fn func(g *game.Game) error) error {
	if e.finished {
		return ErrMatchOver
	}
	if e.game.Phase != game.PhasePlayerTurn {
		return ErrNotPlayerTurn
	}
	return fn(e.game)
}

func (e *Engine) restartLocked() error {
	width, height := e.game.Map.Width, e.game.Map.Height
	if width == 0 || height == 0 {
		cfg := e.game.Config().Map
		width, height = cfg.Width, cfg.Height
	}
	if err := e.game.InitGame(width, height); err != nil {
		return err
	}
	e.finished = false
	e.startedAt = time.Now()
	e.lastTurn = e.game.Turn
	slog.Info("match restarted", "seed", e.game.Seed, "width", width, "height", height)
	return nil
}

func (e *Engine) aiPending() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.finished && e.game.Phase == game.PhaseAITurn
}

func (e *Engine) playAITurn(ctx context.Context) {
	e.mu.Lock()
	var out *Outcome
	if err := e.pause(ctx, e.opts.AIStartDelay); err == nil && e.game.Phase == game.PhaseAITurn {
		report, err := e.ai.RunTurn(ctx, e.game)
		switch {
		case err != nil:
			slog.Debug("ai turn interrupted", "player", report.PlayerID, "err", err)
		default:
			slog.Info("ai turn",
				"player", report.PlayerID,
				"turn", e.game.Turn,
				"attacks", report.Attacks,
				"kills", report.Kills,
				"moves", report.Moves,
			)
		}
	}
	out = e.settleLocked()
	e.mu.Unlock()
	e.report(out)
}

// pause releases the lock for d while still serving requests, so spectators
// can read and a restart can cut the wait short. The lock is held on entry
// and on return.
func (e *Engine) pause(ctx context.Context, d time.Duration) error {
	e.mu.Unlock()
	defer e.mu.Lock()

	if d <= 0 {
		select {
		case req := <-e.actions:
			return e.serveDuringPause(req)
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case req := <-e.actions:
			if err := e.serveDuringPause(req); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) serveDuringPause(req request) error {
	e.handle(req)
	if req.kind != requestAction {
		return errRestarted
	}
	return nil
}

// settleLocked notices a finished match and returns its outcome exactly once.
func (e *Engine) settleLocked() *Outcome {
	if e.finished || e.game.Phase == game.PhaseSetup {
		return nil
	}
	g := e.game
	if g.Turn != e.lastTurn {
		e.lastTurn = g.Turn
		slog.Info("turn", "turn", humanize.Ordinal(g.Turn), "units", len(g.Units()), "cities", len(g.Cities()))
	}

	reason := ""
	switch {
	case g.Phase == game.PhaseGameOver:
		reason = ReasonElimination
	case e.opts.MaxTurns > 0 && g.Turn > e.opts.MaxTurns:
		reason = ReasonTurnLimit
	default:
		return nil
	}
	e.finished = true

	out := newOutcome(g, reason, e.startedAt)
	slog.Info("match finished",
		"winner", out.Winner,
		"reason", out.Reason,
		"turns", out.Turns,
		"duration", out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond),
	)
	return &out
}

func (e *Engine) report(out *Outcome) {
	if out != nil && e.OnGameOver != nil {
		e.OnGameOver(*out)
	}
}

// Finished reports whether the current match has ended.
func (e *Engine) Finished() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.finished
}

// StartedAt returns when the current match began.
func (e *Engine) StartedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.startedAt
}
