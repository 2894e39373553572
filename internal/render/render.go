// Package render draws the board for a terminal. It only reads game state.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/world"
)

const (
	capitalGlyph = "@"
	cityGlyph    = "#"
)

// Renderer turns maps and games into text.
type Renderer struct {
	lg    *lipgloss.Renderer
	plain bool // No colour; the second player's glyphs are lowercased instead
}

// New returns a renderer that styles output for w's terminal capabilities.
func New(w io.Writer) *Renderer {
	return &Renderer{lg: lipgloss.NewRenderer(w)}
}

// Plain returns a renderer that emits bare glyphs.
func Plain() *Renderer {
	return &Renderer{lg: lipgloss.NewRenderer(io.Discard), plain: true}
}

// Map draws terrain only.
func (r *Renderer) Map(m *world.Map) string {
	return r.board(m, func(c *world.Cell) (string, string) { return "", "" })
}

// Game draws the board with units and cities, a status box and a legend.
func (r *Renderer) Game(g *game.Game) string {
	colors := make(map[string]string, len(g.Players))
	second := ""
	for i, p := range g.Players {
		colors[p.ID] = p.Color
		if i == 1 {
			second = p.ID
		}
	}

	board := r.board(g.Map, func(c *world.Cell) (string, string) {
		if u := g.UnitAt(c.Coord); u != nil {
			glyph := u.Stats().Symbol
			if r.plain && u.PlayerID == second {
				glyph = strings.ToLower(glyph)
			}
			return glyph, colors[u.PlayerID]
		}
		if city := g.CityAt(c.Coord); city != nil {
			if city.IsCapital {
				return capitalGlyph, colors[city.PlayerID]
			}
			return cityGlyph, colors[city.PlayerID]
		}
		return "", ""
	})

	return strings.Join([]string{r.status(g), board, r.legend()}, "\n")
}

// board lays the rows out with odd rows shifted half a cell, which is how the
// axial rows line up on screen. piece returns an overlay glyph and colour.
func (r *Renderer) board(m *world.Map, piece func(c *world.Cell) (string, string)) string {
	var b strings.Builder
	for row := 0; row < m.Height; row++ {
		if row%2 == 1 {
			b.WriteString(" ")
		}
		lo, hi := world.RowRange(m.Width, row)
		for q := lo; q < hi; q++ {
			c := m.Get(world.HexCoord{Q: q, R: row})
			if c == nil {
				b.WriteString("  ")
				continue
			}
			b.WriteString(r.cell(c, piece))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) cell(c *world.Cell, piece func(c *world.Cell) (string, string)) string {
	props := c.Terrain.Props()
	glyph, fg := piece(c)
	if glyph == "" {
		glyph = props.Glyph
	}
	if r.plain {
		return glyph
	}
	style := r.lg.NewStyle().Background(lipgloss.Color(props.Color))
	if fg != "" {
		style = style.Foreground(lipgloss.Color(fg)).Bold(true)
	} else {
		style = style.Foreground(lipgloss.Color("#1F2937"))
	}
	return style.Render(glyph)
}

func (r *Renderer) status(g *game.Game) string {
	lines := []string{fmt.Sprintf("Turn %d  %s", g.Turn, g.Phase)}
	if p, ok := g.CurrentPlayer(); ok && g.Phase != game.PhaseGameOver {
		lines = append(lines, "To move: "+p.Name)
	}
	if g.Winner != "" {
		if p := g.Player(g.Winner); p != nil {
			lines = append(lines, "Winner: "+p.Name)
		}
	}
	for _, p := range g.Players {
		lines = append(lines, fmt.Sprintf("%-8s units %2d  cities %d", p.Name, len(g.PlayerUnits(p.ID)), len(g.PlayerCities(p.ID))))
	}
	text := strings.Join(lines, "\n")
	if r.plain {
		return text
	}
	return r.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#874BFD")).
		Padding(0, 1).
		Render(text)
}

func (r *Renderer) legend() string {
	var parts []string
	for _, t := range world.AllTerrains {
		parts = append(parts, t.Props().Glyph+" "+t.String())
	}
	parts = append(parts, capitalGlyph+" capital", cityGlyph+" city")
	text := strings.Join(parts, "  ")
	if r.plain {
		return text
	}
	return r.lg.NewStyle().Foreground(lipgloss.Color("#999999")).Render(text)
}

// Events formats the last n events, one per line.
func (r *Renderer) Events(events []game.Event, n int) string {
	if len(events) > n {
		events = events[len(events)-n:]
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("[%3d] %-10s %s", e.Turn, e.Category, e.Description))
	}
	return strings.Join(lines, "\n")
}
