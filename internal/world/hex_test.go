package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b HexCoord
		want int
	}{
		{"same hex", HexCoord{3, 4}, HexCoord{3, 4}, 0},
		{"east neighbor", HexCoord{0, 0}, HexCoord{1, 0}, 1},
		{"northeast neighbor", HexCoord{0, 0}, HexCoord{1, -1}, 1},
		{"two along r", HexCoord{0, 0}, HexCoord{0, 2}, 2},
		{"diagonal", HexCoord{0, 0}, HexCoord{2, -1}, 2},
		{"long haul", HexCoord{2, 12}, HexCoord{17, 2}, 15},
		{"negative q", HexCoord{-3, 6}, HexCoord{2, 0}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestDistanceMetricProperties(t *testing.T) {
	var coords []HexCoord
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			coords = append(coords, HexCoord{q, r})
		}
	}

	for _, a := range coords {
		assert.Equal(t, 0, Distance(a, a))
		for _, b := range coords {
			assert.Equal(t, Distance(a, b), Distance(b, a), "symmetry %s %s", a, b)
			for _, c := range coords {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c),
					"triangle inequality %s %s %s", a, b, c)
			}
		}
	}
}

func TestNeighborsOrderAndDistance(t *testing.T) {
	center := HexCoord{4, -2}
	got := center.Neighbors()

	want := [6]HexCoord{{5, -2}, {5, -3}, {4, -3}, {3, -2}, {3, -1}, {4, -1}}
	assert.Equal(t, want, got)
	for _, n := range got {
		assert.Equal(t, 1, Distance(center, n))
	}
}

func TestInRange(t *testing.T) {
	center := HexCoord{5, 5}

	assert.Equal(t, []HexCoord{center}, InRange(center, 0))
	assert.Len(t, InRange(center, 1), 7)
	ring2 := InRange(center, 2)
	assert.Len(t, ring2, 19)

	seen := NewCoordSet()
	for _, c := range ring2 {
		assert.LessOrEqual(t, Distance(center, c), 2)
		assert.False(t, seen.Has(c), "duplicate %s", c)
		seen.Add(c)
	}
	assert.Nil(t, InRange(center, -1))
}

func TestKeyRoundTrip(t *testing.T) {
	for _, c := range []HexCoord{{0, 0}, {-7, 3}, {12, -40}} {
		parsed, err := ParseKey(c.Key())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "-7,3", HexCoord{-7, 3}.Key())

	_, err := ParseKey("3")
	assert.Error(t, err)
	_, err = ParseKey("a,1")
	assert.Error(t, err)
}

func TestCoordSetKeysSorted(t *testing.T) {
	s := NewCoordSet(HexCoord{2, 1}, HexCoord{0, 5}, HexCoord{1, 1})
	assert.Equal(t, []string{"0,5", "1,1", "2,1"}, s.Keys())
	assert.True(t, s.Has(HexCoord{1, 1}))
	assert.False(t, s.Has(HexCoord{1, 2}))
}
