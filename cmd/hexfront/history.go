package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hexfront/internal/render"
)

var (
	historyLimit  int
	historyEvents int
)

var historyCmd = &cobra.Command{
	Use:   "history [match-id]",
	Short: "List recorded matches, or show one match's events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 1 {
			m, err := db.GetMatch(args[0])
			if err != nil {
				return fmt.Errorf("match %s: %w", args[0], err)
			}
			events, err := db.MatchEvents(m.ID)
			if err != nil {
				return fmt.Errorf("match events: %w", err)
			}
			fmt.Printf("%s  seed %d  %dx%d  %s (%s) after %d turns\n\n",
				m.ID, m.Seed, m.Width, m.Height, winnerLabel(m.Winner), m.Reason, m.Turns)
			fmt.Println(render.Plain().Events(events, historyEvents))
			return nil
		}

		matches, err := db.RecentMatches(historyLimit)
		if err != nil {
			return fmt.Errorf("recent matches: %w", err)
		}
		if len(matches) == 0 {
			fmt.Println("No matches recorded yet.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%s  %-10s %-12s %4d turns  %s\n",
				m.ID, winnerLabel(m.Winner), m.Reason, m.Turns, humanize.Time(m.FinishedAt))
		}
		if last, err := db.GetMeta("last_match"); err == nil {
			fmt.Printf("\nLatest: %s\n", last)
		}
		return nil
	},
}

func winnerLabel(winner string) string {
	if winner == "" {
		return "draw"
	}
	return winner
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "matches to list")
	historyCmd.Flags().IntVar(&historyEvents, "events", 100, "events to show for one match")
	rootCmd.AddCommand(historyCmd)
}
