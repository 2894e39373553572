// Package config loads hexfront settings from defaults, an optional YAML file,
// HEXFRONT_* environment variables and command-line flags, in rising order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// Config is the full application configuration.
type Config struct {
	Map        MapConfig     `mapstructure:"map"`
	Players    []game.Player `mapstructure:"players"`
	StartUnits []string      `mapstructure:"start_units"`
	AI         AIConfig      `mapstructure:"ai"`
	Match      MatchConfig   `mapstructure:"match"`
	DB         DBConfig      `mapstructure:"db"`
	API        APIConfig     `mapstructure:"api"`
	Log        LogConfig     `mapstructure:"log"`
}

// MapConfig controls map generation.
type MapConfig struct {
	Width         int     `mapstructure:"width"`
	Height        int     `mapstructure:"height"`
	Seed          int64   `mapstructure:"seed"` // 0 = fresh seed every game
	Method        string  `mapstructure:"method"`
	WaterRatio    float64 `mapstructure:"water_ratio"`
	MountainRatio float64 `mapstructure:"mountain_ratio"`
	ForestRatio   float64 `mapstructure:"forest_ratio"`
}

// AIConfig paces the computer player.
type AIConfig struct {
	Delay      time.Duration `mapstructure:"delay"`
	StartDelay time.Duration `mapstructure:"start_delay"`
}

// MatchConfig bounds a match.
type MatchConfig struct {
	MaxTurns int `mapstructure:"max_turns"`
}

// DBConfig locates the match history database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// APIConfig configures the spectator server.
type APIConfig struct {
	Port     int    `mapstructure:"port"`
	AdminKey string `mapstructure:"admin_key"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	gen := world.DefaultGenConfig()
	return Config{
		Map: MapConfig{
			Width:         gen.Width,
			Height:        gen.Height,
			Method:        gen.Method,
			WaterRatio:    gen.WaterRatio,
			MountainRatio: gen.MountainRatio,
			ForestRatio:   gen.ForestRatio,
		},
		Players:    game.DefaultPlayers(),
		StartUnits: []string{"warrior", "archer", "cavalry", "settler"},
		AI: AIConfig{
			Delay:      300 * time.Millisecond,
			StartDelay: 500 * time.Millisecond,
		},
		Match: MatchConfig{MaxTurns: 200},
		DB:    DBConfig{Path: "data/hexfront.db"},
		API:   APIConfig{Port: 3001},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key's default on v so env overrides and
// flag bindings resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("map.width", d.Map.Width)
	v.SetDefault("map.height", d.Map.Height)
	v.SetDefault("map.seed", d.Map.Seed)
	v.SetDefault("map.method", d.Map.Method)
	v.SetDefault("map.water_ratio", d.Map.WaterRatio)
	v.SetDefault("map.mountain_ratio", d.Map.MountainRatio)
	v.SetDefault("map.forest_ratio", d.Map.ForestRatio)

	players := make([]map[string]any, 0, len(d.Players))
	for _, p := range d.Players {
		players = append(players, map[string]any{"id": p.ID, "name": p.Name, "is_ai": p.IsAI, "color": p.Color})
	}
	v.SetDefault("players", players)
	v.SetDefault("start_units", d.StartUnits)

	v.SetDefault("ai.delay", d.AI.Delay)
	v.SetDefault("ai.start_delay", d.AI.StartDelay)
	v.SetDefault("match.max_turns", d.Match.MaxTurns)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.admin_key", d.API.AdminKey)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration into v and decodes it. With an empty path the
// file hexfront.yaml is looked up in the working directory and
// $HOME/.config/hexfront, and a missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hexfront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hexfront")
	}

	v.SetEnvPrefix("HEXFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks everything that can be checked without starting a game.
func (c Config) Validate() error {
	if err := c.GenConfig().Validate(); err != nil {
		return fmt.Errorf("map: %w", err)
	}
	if _, err := c.GameConfig(); err != nil {
		return err
	}
	if c.AI.Delay < 0 || c.AI.StartDelay < 0 {
		return errors.New("ai delays must not be negative")
	}
	if c.Match.MaxTurns < 0 {
		return errors.New("match.max_turns must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// GenConfig converts the map section for the generator.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Width:         c.Map.Width,
		Height:        c.Map.Height,
		WaterRatio:    c.Map.WaterRatio,
		MountainRatio: c.Map.MountainRatio,
		ForestRatio:   c.Map.ForestRatio,
		Seed:          c.Map.Seed,
		Method:        c.Map.Method,
	}
}

// GameConfig builds the game setup, resolving unit type names.
func (c Config) GameConfig() (game.Config, error) {
	start := make([]units.UnitType, 0, len(c.StartUnits))
	for _, name := range c.StartUnits {
		t, err := units.ParseType(name)
		if err != nil {
			return game.Config{}, fmt.Errorf("start_units: %w", err)
		}
		start = append(start, t)
	}
	players := make([]game.Player, len(c.Players))
	copy(players, c.Players)
	return game.Config{
		Map:        c.GenConfig(),
		Players:    players,
		StartUnits: start,
	}, nil
}

// EngineOptions returns the pacing and match limits.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		AIDelay:      c.AI.Delay,
		AIStartDelay: c.AI.StartDelay,
		MaxTurns:     c.Match.MaxTurns,
	}
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// NewLogger builds the slog logger described by the log section.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
