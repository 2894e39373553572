package world

import "fmt"

// Cell represents a single tile on the game map.
type Cell struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`
	UnitID  string   `json:"unit_id,omitempty"` // Occupying unit, mirrors unit positions
	CityID  string   `json:"city_id,omitempty"` // City founded on this tile
}

// Map holds the hex grid. Cells are created during generation and never removed.
type Map struct {
	Cells  map[HexCoord]*Cell `json:"-"`
	Width  int                `json:"width"`
	Height int                `json:"height"`
}

// NewMap creates an empty map with the given nominal dimensions.
func NewMap(width, height int) *Map {
	return &Map{
		Cells:  make(map[HexCoord]*Cell, width*height),
		Width:  width,
		Height: height,
	}
}

// Get returns the cell at the given coordinate, or nil if it is not on the map.
func (m *Map) Get(coord HexCoord) *Cell {
	return m.Cells[coord]
}

// Set places a cell at its coordinate.
func (m *Map) Set(cell *Cell) {
	m.Cells[cell.Coord] = cell
}

// CellCount returns the total number of cells in the map.
func (m *Map) CellCount() int {
	return len(m.Cells)
}

// RowRange returns the half-open q range [lo, hi) of row r. Rows shift left by
// floor(r/2) so the axial grid keeps a roughly rectangular footprint.
func RowRange(width, r int) (lo, hi int) {
	offset := r / 2
	return -offset, width - offset
}

// TerrainCounts returns a summary of terrain type distribution.
func (m *Map) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, c := range m.Cells {
		counts[c.Terrain]++
	}
	return counts
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, cells=%d)", m.Width, m.Height, m.CellCount())
}
