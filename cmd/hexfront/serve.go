package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/hexfront/internal/api"
	"github.com/talgya/hexfront/internal/engine"
)

var (
	serveAIOnly  bool
	serveRematch time.Duration
	servePort    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a paced match behind the spectator API",
	Long: `Starts a match with the configured AI pacing and serves its state over
HTTP and a websocket event stream. Finished matches are recorded and a new
one starts after --rematch.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveAIOnly, "ai-only", true, "hand every player to the AI")
	serveCmd.Flags().DurationVar(&serveRematch, "rematch", 10*time.Second, "pause before the next match, 0 to stop after one")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides api.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// ── Match ─────────────────────────────────────────────────────────
	g, err := newGame(serveAIOnly)
	if err != nil {
		return err
	}
	eng := engine.New(g, cfg.EngineOptions())
	eng.OnGameOver = func(out engine.Outcome) {
		if err := recordMatch(db, out); err != nil {
			slog.Error("failed to record match", "match", out.MatchID, "error", err)
		}
		if serveRematch > 0 {
			go rematch(ctx, eng, serveRematch)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	port := cfg.API.Port
	if servePort != 0 {
		port = servePort
	}
	if cfg.API.AdminKey == "" {
		slog.Warn("api.admin_key not set, POST /api/v1/restart is disabled")
	}
	srv := api.NewServer(eng, db, port, cfg.API.AdminKey)

	// ── Start ─────────────────────────────────────────────────────────
	go eng.Run(ctx)

	fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
	fmt.Println("Serving match... (Ctrl+C to stop)")

	err = srv.Run(ctx)
	stop()
	<-eng.Done()
	if err != nil {
		return err
	}
	fmt.Println("Server stopped.")
	return nil
}

// rematch starts a new match after d unless ctx ends first.
func rematch(ctx context.Context, eng *engine.Engine, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}
	if err := eng.Restart(ctx); err != nil {
		slog.Warn("rematch failed", "error", err)
		return
	}
	slog.Info("rematch started")
}
