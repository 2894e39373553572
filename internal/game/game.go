// Package game is the turn-based game-state controller. A Game owns the map,
// the units, the cities and the turn cycle; every rule runs through its
// methods so one action is one state transition.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hexfront/internal/cities"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// Phase is the controller's state machine position.
type Phase string

const (
	PhaseSetup      Phase = "setup"       // No map or units yet
	PhasePlayerTurn Phase = "player_turn" // A human player acts
	PhaseAITurn     Phase = "ai_turn"     // The AI acts, human input is locked out
	PhaseGameOver   Phase = "game_over"   // Terminal
)

// ErrInvalidDimensions is returned by InitGame when the requested map cannot host a game.
var ErrInvalidDimensions = errors.New("invalid map configuration")

// Player is one of the two factions.
type Player struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	IsAI  bool   `json:"is_ai" mapstructure:"is_ai"`
	Color string `json:"color" mapstructure:"color"`
}

// Config holds everything needed to start a game.
type Config struct {
	Map        world.GenConfig
	Players    []Player
	StartUnits []units.UnitType // Placed around each player's spawn anchor
}

// DefaultPlayers returns the human-versus-AI pairing.
func DefaultPlayers() []Player {
	return []Player{
		{ID: "player1", Name: "Player", IsAI: false, Color: "#3B82F6"},
		{ID: "player2", Name: "AI", IsAI: true, Color: "#EF4444"},
	}
}

// DefaultConfig returns a 20x15 human-versus-AI game.
func DefaultConfig() Config {
	return Config{
		Map:     world.DefaultGenConfig(),
		Players: DefaultPlayers(),
		StartUnits: []units.UnitType{
			units.TypeWarrior, units.TypeArcher, units.TypeCavalry, units.TypeSettler,
		},
	}
}

// startOffsets are the spawn slots around the first player's anchor: the
// anchor itself, then its neighbors. The second player uses the mirror image.
var startOffsets = []world.HexCoord{
	{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 0, R: -1}, {Q: -1, R: 1},
	{Q: 1, R: -1}, {Q: -1, R: 0}, {Q: 0, R: 1},
}

// Game holds the complete state of one match.
type Game struct {
	Map                *world.Map `json:"map"`
	Players            []Player   `json:"players"`
	CurrentPlayerIndex int        `json:"current_player_index"`
	Phase              Phase      `json:"phase"`
	Turn               int        `json:"turn"`
	SelectedUnitID     string     `json:"selected_unit_id,omitempty"`
	SelectedCityID     string     `json:"selected_city_id,omitempty"`
	Winner             string     `json:"winner,omitempty"`
	Seed               int64      `json:"seed"`

	// OnEvent, when set, receives every event as it is logged.
	OnEvent func(Event) `json:"-"`

	cfg Config

	// Collections keep creation order so iteration, and every tie-break
	// built on it, is deterministic.
	units     map[string]*units.Unit
	unitOrder []string
	cities    map[string]*cities.City
	cityOrder []string

	names  *cities.NameGenerator
	events []Event
}

// New creates a game in the setup phase.
func New(cfg Config) (*Game, error) {
	if len(cfg.Players) != 2 {
		return nil, fmt.Errorf("game needs exactly 2 players, got %d", len(cfg.Players))
	}
	seen := make(map[string]bool, len(cfg.Players))
	for _, p := range cfg.Players {
		if p.ID == "" {
			return nil, errors.New("player id must not be empty")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
	}
	if len(cfg.StartUnits) > len(startOffsets) {
		return nil, fmt.Errorf("at most %d start units fit a spawn area, got %d", len(startOffsets), len(cfg.StartUnits))
	}
	for _, t := range cfg.StartUnits {
		if !t.Valid() {
			return nil, fmt.Errorf("unknown start unit %q", t)
		}
	}

	players := make([]Player, len(cfg.Players))
	copy(players, cfg.Players)

	g := &Game{
		Players: players,
		cfg:     cfg,
	}
	g.Reset()
	return g, nil
}

// Config returns the configuration the game was created with.
func (g *Game) Config() Config {
	return g.cfg
}

// InitGame generates a fresh map, places every player's starting units and
// starts turn 1. Calling it on a running game restarts it.
func (g *Game) InitGame(width, height int) error {
	cfg := g.cfg.Map
	cfg.Width, cfg.Height = width, height
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	g.Seed = cfg.Seed
	g.Start(world.Generate(cfg))

	anchors := world.SpawnAnchors(width, height)
	for i, p := range g.Players {
		for j, t := range g.cfg.StartUnits {
			offset := startOffsets[j]
			if i%2 == 1 {
				offset = world.HexCoord{Q: -offset.Q, R: -offset.R}
			}
			coord := anchors[i%len(anchors)].Add(offset)
			if _, ok := g.SpawnUnit(t, p.ID, coord); !ok {
				slog.Warn("start unit could not be placed", "player", p.ID, "type", t, "coord", coord.Key())
			}
		}
	}

	slog.Info("game initialised",
		"seed", g.Seed,
		"map", g.Map.String(),
		"units", len(g.unitOrder),
		"first", g.Players[0].ID,
	)
	return nil
}

// Start begins a game on an existing map with no units or cities. InitGame
// builds on it; tests use it to stage hand-made boards.
func (g *Game) Start(m *world.Map) {
	g.Map = m
	g.units = make(map[string]*units.Unit)
	g.unitOrder = nil
	g.cities = make(map[string]*cities.City)
	g.cityOrder = nil
	g.names = cities.NewNameGenerator(g.Seed)
	g.events = nil
	g.CurrentPlayerIndex = 0
	g.Turn = 1
	g.SelectedUnitID = ""
	g.SelectedCityID = ""
	g.Winner = ""
	g.Phase = phaseFor(g.Players[0])

	g.logEvent(CategoryTurn, g.Players[0].ID, "The game begins. %s moves first.", g.Players[0].Name)
}

// Reset tears the match down and returns to the setup phase.
func (g *Game) Reset() {
	g.Map = world.NewMap(0, 0)
	g.units = make(map[string]*units.Unit)
	g.unitOrder = nil
	g.cities = make(map[string]*cities.City)
	g.cityOrder = nil
	g.names = cities.NewNameGenerator(0)
	g.events = nil
	g.CurrentPlayerIndex = 0
	g.Phase = PhaseSetup
	g.Turn = 1
	g.SelectedUnitID = ""
	g.SelectedCityID = ""
	g.Winner = ""
	g.Seed = 0
}

// SpawnUnit places a new full-strength unit. It fails when the type or the
// player is unknown, or the tile is missing, impassable or occupied.
func (g *Game) SpawnUnit(t units.UnitType, playerID string, coord world.HexCoord) (*units.Unit, bool) {
	if !t.Valid() || g.Player(playerID) == nil {
		return nil, false
	}
	cell := g.Map.Get(coord)
	if cell == nil || !cell.Terrain.Passable() || cell.UnitID != "" {
		return nil, false
	}

	u := units.New(t, playerID, coord)
	g.units[u.ID] = u
	g.unitOrder = append(g.unitOrder, u.ID)
	cell.UnitID = u.ID
	return u, true
}

// removeUnit deletes a unit and frees its tile.
func (g *Game) removeUnit(id string) {
	u, ok := g.units[id]
	if !ok {
		return
	}
	if cell := g.Map.Get(u.Coord); cell != nil && cell.UnitID == id {
		cell.UnitID = ""
	}
	delete(g.units, id)
	for i, uid := range g.unitOrder {
		if uid == id {
			g.unitOrder = append(g.unitOrder[:i], g.unitOrder[i+1:]...)
			break
		}
	}
	if g.SelectedUnitID == id {
		g.SelectedUnitID = ""
	}
}

// SelectUnit marks a unit as selected; an empty id clears the selection.
func (g *Game) SelectUnit(id string) bool {
	if id != "" && g.units[id] == nil {
		return false
	}
	g.SelectedUnitID = id
	return true
}

// SelectCity marks a city as selected; an empty id clears the selection.
func (g *Game) SelectCity(id string) bool {
	if id != "" && g.cities[id] == nil {
		return false
	}
	g.SelectedCityID = id
	return true
}

// acting reports whether the phase accepts game actions.
func (g *Game) acting() bool {
	return g.Phase == PhasePlayerTurn || g.Phase == PhaseAITurn
}

func phaseFor(p Player) Phase {
	if p.IsAI {
		return PhaseAITurn
	}
	return PhasePlayerTurn
}
