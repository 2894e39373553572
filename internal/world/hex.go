// Package world provides the hex grid, terrain table, and map generation.
// Uses axial coordinates (q, r) for the hex grid.
package world

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
// HexCoord is comparable and is used directly as a map key.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Key returns the canonical "q,r" string form of the coordinate.
// Only boundaries (JSON, logs, key sets) use it; lookups use the struct.
func (h HexCoord) Key() string {
	return strconv.Itoa(h.Q) + "," + strconv.Itoa(h.R)
}

// String implements fmt.Stringer.
func (h HexCoord) String() string {
	return "(" + h.Key() + ")"
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (HexCoord, error) {
	qs, rs, ok := strings.Cut(key, ",")
	if !ok {
		return HexCoord{}, fmt.Errorf("parse coord key %q: missing comma", key)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("parse coord key %q: %w", key, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("parse coord key %q: %w", key, err)
	}
	return HexCoord{Q: q, R: r}, nil
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// The order is significant: spawn searches and tie-breaks walk it front to back.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dq+dr) + abs(dr)) / 2
}

// InRange returns every coordinate within n steps of center, center included.
func InRange(center HexCoord, n int) []HexCoord {
	if n < 0 {
		return nil
	}
	results := make([]HexCoord, 0, 3*n*(n+1)+1)
	for q := -n; q <= n; q++ {
		rMin := max(-n, -q-n)
		rMax := min(n, -q+n)
		for r := rMin; r <= rMax; r++ {
			results = append(results, center.Add(HexCoord{Q: q, R: r}))
		}
	}
	return results
}

// CoordSet is a set of coordinates, used for highlight and reachability queries.
type CoordSet map[HexCoord]struct{}

// NewCoordSet builds a set from the given coordinates.
func NewCoordSet(coords ...HexCoord) CoordSet {
	s := make(CoordSet, len(coords))
	for _, c := range coords {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts a coordinate.
func (s CoordSet) Add(c HexCoord) {
	s[c] = struct{}{}
}

// Has reports whether the coordinate is in the set.
func (s CoordSet) Has(c HexCoord) bool {
	_, ok := s[c]
	return ok
}

// Keys returns the canonical string keys of the set, sorted for stable output.
func (s CoordSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for c := range s {
		keys = append(keys, c.Key())
	}
	sort.Strings(keys)
	return keys
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
