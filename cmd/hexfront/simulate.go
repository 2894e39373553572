package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/persistence"
	"github.com/talgya/hexfront/internal/render"
)

var (
	simMatches  int
	simNoRecord bool
	simShow     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play AI-versus-AI matches as fast as possible",
	Long: `Runs headless matches with the AI on both sides and no pacing. A match
ends when one side is eliminated or match.max_turns is reached. Results are
stored in the match history unless --no-record is given.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simMatches, "matches", "n", 1, "number of matches to play")
	simulateCmd.Flags().BoolVar(&simNoRecord, "no-record", false, "do not store results")
	simulateCmd.Flags().BoolVar(&simShow, "show", false, "print the final board of each match")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if cfg.Match.MaxTurns <= 0 {
		return errors.New("simulate needs match.max_turns above zero")
	}
	if simMatches < 1 {
		return errors.New("--matches must be at least 1")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *persistence.DB
	if !simNoRecord {
		var err error
		if db, err = openDB(); err != nil {
			return err
		}
		defer db.Close()
	}

	baseSeed := cfg.Map.Seed
	wins := make(map[string]int)
	draws := 0

	for i := 0; i < simMatches; i++ {
		if baseSeed != 0 {
			cfg.Map.Seed = baseSeed + int64(i)
		}
		out, eng, err := simulateOne(ctx)
		if err != nil {
			return err
		}
		if out == nil {
			fmt.Println("Interrupted.")
			return nil
		}

		if out.Winner == "" {
			draws++
		} else {
			wins[out.Winner]++
		}
		if db != nil {
			if err := recordMatch(db, *out); err != nil {
				slog.Error("failed to record match", "match", out.MatchID, "error", err)
			}
		}

		fmt.Printf("Match %d (seed %d): %s after the %s turn, %s events\n",
			i+1, out.Seed, describeResult(out), humanize.Ordinal(out.Turns), humanize.Comma(int64(len(out.Events))))
		if simShow {
			r := render.New(os.Stdout)
			eng.View(func(g *game.Game) {
				fmt.Println(r.Game(g))
			})
		}
	}

	if simMatches > 1 {
		fmt.Printf("\n%s matches: %s\n", humanize.Comma(int64(simMatches)), tally(wins, draws))
	}
	if db != nil {
		total, err := db.WinCounts()
		if err != nil {
			return fmt.Errorf("read win counts: %w", err)
		}
		fmt.Printf("All recorded wins: %s\n", tally(total, -1))
	}
	return nil
}

// simulateOne plays a single unpaced AI match. It returns a nil outcome if
// ctx was cancelled first.
func simulateOne(ctx context.Context) (*engine.Outcome, *engine.Engine, error) {
	g, err := newGame(true)
	if err != nil {
		return nil, nil, err
	}
	opts := cfg.EngineOptions()
	opts.AIDelay, opts.AIStartDelay = 0, 0
	eng := engine.New(g, opts)

	matchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out *engine.Outcome
	eng.OnGameOver = func(o engine.Outcome) {
		out = &o
		cancel()
	}
	eng.Run(matchCtx)
	return out, eng, nil
}

// recordMatch stores an outcome and remembers it as the latest match.
func recordMatch(db *persistence.DB, out engine.Outcome) error {
	if err := db.RecordMatch(out); err != nil {
		return err
	}
	return db.SaveMeta("last_match", out.MatchID)
}

func describeResult(out *engine.Outcome) string {
	if out.Winner == "" {
		return "draw"
	}
	return out.Winner + " wins"
}

// tally formats win counts by player id; draws < 0 omits the draw count.
func tally(wins map[string]int, draws int) string {
	ids := make([]string, 0, len(wins))
	for id := range wins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s := ""
	for _, id := range ids {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("%s %s", id, humanize.Comma(int64(wins[id])))
	}
	if draws >= 0 {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("draws %s", humanize.Comma(int64(draws)))
	}
	if s == "" {
		return "none"
	}
	return s
}
