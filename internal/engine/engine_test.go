package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexfront/internal/game"
)

func newGame(t *testing.T, players []game.Player) *game.Game {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Map.Seed = 11
	if players != nil {
		cfg.Players = players
	}
	g, err := game.New(cfg)
	require.NoError(t, err)
	require.NoError(t, g.InitGame(20, 15))
	return g
}

func aiPlayers() []game.Player {
	p := game.DefaultPlayers()
	p[0].IsAI = true
	return p
}

// start runs the engine until the test ends.
func start(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-e.Done()
	})
}

func phase(e *Engine) game.Phase {
	var p game.Phase
	e.View(func(g *game.Game) { p = g.Phase })
	return p
}

func TestHumanActionAndAIReply(t *testing.T) {
	e := New(newGame(t, nil), Options{})
	start(t, e)
	ctx := context.Background()

	err := e.Act(ctx, func(g *game.Game) error {
		if !g.EndTurn() {
			return errors.New("end turn refused")
		}
		return nil
	})
	require.NoError(t, err)

	// The AI plays its turn and hands control back.
	require.Eventually(t, func() bool {
		var turn int
		var p game.Phase
		e.View(func(g *game.Game) { turn, p = g.Turn, g.Phase })
		return turn == 2 && p == game.PhasePlayerTurn
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHumanLockedOutDuringAITurn(t *testing.T) {
	e := New(newGame(t, nil), Options{AIStartDelay: time.Hour})
	start(t, e)
	ctx := context.Background()

	require.NoError(t, e.Act(ctx, func(g *game.Game) error {
		g.EndTurn()
		return nil
	}))
	require.Equal(t, game.PhaseAITurn, phase(e))

	called := false
	err := e.Act(ctx, func(g *game.Game) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotPlayerTurn)
	assert.False(t, called)
}

func TestActReturnsActionError(t *testing.T) {
	e := New(newGame(t, nil), Options{})
	start(t, e)

	boom := errors.New("boom")
	err := e.Act(context.Background(), func(*game.Game) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRestartInterruptsAITurn(t *testing.T) {
	e := New(newGame(t, aiPlayers()), Options{AIStartDelay: time.Hour})
	start(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Restart(ctx))

	e.View(func(g *game.Game) {
		assert.Equal(t, 1, g.Turn)
		assert.Equal(t, 0, g.CurrentPlayerIndex)
		assert.Len(t, g.Units(), 8)
	})
	assert.False(t, e.Finished())
}

func TestResetReturnsToSetup(t *testing.T) {
	e := New(newGame(t, nil), Options{})
	start(t, e)

	require.NoError(t, e.Reset(context.Background()))
	assert.Equal(t, game.PhaseSetup, phase(e))

	err := e.Act(context.Background(), func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, ErrNotPlayerTurn)
}

func TestAIMatchRunsToCompletion(t *testing.T) {
	e := New(newGame(t, aiPlayers()), Options{MaxTurns: 60})
	outcomes := make(chan Outcome, 1)
	e.OnGameOver = func(o Outcome) { outcomes <- o }
	start(t, e)

	select {
	case o := <-outcomes:
		assert.NotEmpty(t, o.MatchID)
		assert.Equal(t, int64(11), o.Seed)
		assert.Equal(t, 20, o.Width)
		assert.NotEmpty(t, o.Events)
		switch o.Reason {
		case ReasonElimination:
			assert.NotEmpty(t, o.Winner)
		case ReasonTurnLimit:
			assert.Empty(t, o.Winner)
			assert.Equal(t, 61, o.Turns)
		default:
			t.Fatalf("unexpected reason %q", o.Reason)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("match did not finish")
	}
	assert.True(t, e.Finished())

	err := e.Act(context.Background(), func(*game.Game) error { return nil })
	assert.Error(t, err)
}

func TestStoppedEngineRejectsActions(t *testing.T) {
	e := New(newGame(t, nil), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	cancel()
	<-e.Done()

	err := e.Act(context.Background(), func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	e := New(newGame(t, nil), Options{AIStartDelay: time.Hour})
	events, unsubscribe := e.Subscribe(16)
	defer unsubscribe()
	start(t, e)

	require.NoError(t, e.Act(context.Background(), func(g *game.Game) error {
		g.EndTurn()
		return nil
	}))

	select {
	case ev := <-events:
		assert.Equal(t, game.CategoryTurn, ev.Category)
		assert.Equal(t, "player2", ev.PlayerID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	unsubscribe()
	_, open := <-events
	assert.False(t, open)
}
