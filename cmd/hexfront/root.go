package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/hexfront/internal/config"
	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/persistence"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hexfront",
	Short: "Turn-based hex strategy engine",
	Long: `hexfront plays two-faction matches on a procedurally generated hex map.
Units move, fight and found cities; a rule-based AI plays either side.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(cfg.NewLogger(os.Stderr))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: hexfront.yaml in . or $HOME/.config/hexfront)")
	flags.Int64("seed", 0, "map seed, 0 for a fresh one")
	flags.Int("width", 0, "map width in hexes")
	flags.Int("height", 0, "map height in hexes")
	flags.String("method", "", "terrain generator: classic or simplex")
	flags.String("db", "", "match history database path")
	flags.String("log-level", "", "debug, info, warn or error")

	bind := map[string]string{
		"map.seed":   "seed",
		"map.width":  "width",
		"map.height": "height",
		"map.method": "method",
		"db.path":    "db",
		"log.level":  "log-level",
	}
	for key, flag := range bind {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// newGame builds and initialises a game from the loaded configuration.
// With aiOnly every player is handed to the AI.
func newGame(aiOnly bool) (*game.Game, error) {
	gc, err := cfg.GameConfig()
	if err != nil {
		return nil, err
	}
	if aiOnly {
		for i := range gc.Players {
			gc.Players[i].IsAI = true
		}
	}
	g, err := game.New(gc)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	if err := g.InitGame(gc.Map.Width, gc.Map.Height); err != nil {
		return nil, err
	}
	return g, nil
}

// openDB opens the match history, creating its directory.
func openDB() (*persistence.DB, error) {
	path := cfg.DB.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", path)
	return db, nil
}
