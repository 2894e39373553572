// Map generation: a seeded terrain roll, a smoothing pass, and spawn clearing.
package world

import (
	"fmt"
	"math"
	"sort"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Generation methods.
const (
	MethodClassic = "classic" // Per-cell LCG roll against cumulative ratios
	MethodSimplex = "simplex" // Layered OpenSimplex elevation and moisture bands
)

const (
	smoothingIterations = 2
	smoothingThreshold  = 3   // Neighbors of one terrain needed to convert a cell
	hillsChance         = 0.3 // Secondary roll after the ratio bands miss
	desertChance        = 0.1
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Width         int
	Height        int
	WaterRatio    float64
	MountainRatio float64
	ForestRatio   float64
	Seed          int64  // 0 = seed from the wall clock
	Method        string // MethodClassic or MethodSimplex
}

// DefaultGenConfig returns the standard 20x15 skirmish map.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:         20,
		Height:        15,
		WaterRatio:    0.15,
		MountainRatio: 0.10,
		ForestRatio:   0.15,
		Method:        MethodClassic,
	}
}

// Validate checks that the dimensions fit both spawn anchors and the ratios are sane.
func (c GenConfig) Validate() error {
	if c.Width < 5 || c.Height < 5 {
		return fmt.Errorf("map %dx%d is smaller than 5x5", c.Width, c.Height)
	}
	for _, anchor := range SpawnAnchors(c.Width, c.Height) {
		lo, hi := RowRange(c.Width, anchor.R)
		if anchor.Q < lo || anchor.Q >= hi {
			return fmt.Errorf("map %dx%d does not contain spawn anchor %s", c.Width, c.Height, anchor)
		}
	}
	if anchors := SpawnAnchors(c.Width, c.Height); Distance(anchors[0], anchors[1]) < 3 {
		return fmt.Errorf("map %dx%d puts the spawn areas on top of each other", c.Width, c.Height)
	}
	if c.WaterRatio < 0 || c.MountainRatio < 0 || c.ForestRatio < 0 ||
		c.WaterRatio+c.MountainRatio+c.ForestRatio > 1 {
		return fmt.Errorf("terrain ratios %.2f/%.2f/%.2f must be non-negative and sum to at most 1",
			c.WaterRatio, c.MountainRatio, c.ForestRatio)
	}
	switch c.Method {
	case "", MethodClassic, MethodSimplex:
	default:
		return fmt.Errorf("unknown generation method %q", c.Method)
	}
	return nil
}

// SpawnAnchors returns the two starting positions: bottom-left, then top-right.
func SpawnAnchors(width, height int) [2]HexCoord {
	return [2]HexCoord{
		{Q: 2, R: height - 3},
		{Q: width - 3, R: 2},
	}
}

// Generate creates a complete map. The result depends only on the config,
// so a pinned seed reproduces the same map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := NewMap(cfg.Width, cfg.Height)
	switch cfg.Method {
	case MethodSimplex:
		fillSimplex(m, cfg, seed)
	default:
		fillClassic(m, cfg, seed)
	}

	smoothTerrain(m, smoothingIterations)
	clearSpawnAreas(m)
	return m
}

// fillClassic assigns terrain row by row with the LCG. Once the three ratio
// bands miss, hills and desert each take a fresh draw.
func fillClassic(m *Map, cfg GenConfig, seed int64) {
	rng := NewSeededRandom(seed)
	for r := 0; r < cfg.Height; r++ {
		lo, hi := RowRange(cfg.Width, r)
		for q := lo; q < hi; q++ {
			var terrain Terrain
			roll := rng.Next()
			switch {
			case roll < cfg.WaterRatio:
				terrain = TerrainWater
			case roll < cfg.WaterRatio+cfg.MountainRatio:
				terrain = TerrainMountains
			case roll < cfg.WaterRatio+cfg.MountainRatio+cfg.ForestRatio:
				terrain = TerrainForest
			case rng.Next() < hillsChance:
				terrain = TerrainHills
			case rng.Next() < desertChance:
				terrain = TerrainDesert
			default:
				terrain = TerrainPlains
			}
			m.Set(&Cell{Coord: HexCoord{Q: q, R: r}, Terrain: terrain})
		}
	}
}

// fillSimplex samples elevation and moisture noise and cuts them into bands
// sized by the configured ratios.
func fillSimplex(m *Map, cfg GenConfig, seed int64) {
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	type sample struct {
		coord HexCoord
		elev  float64
		moist float64
	}
	var samples []sample
	for r := 0; r < cfg.Height; r++ {
		lo, hi := RowRange(cfg.Width, r)
		for q := lo; q < hi; q++ {
			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0
			samples = append(samples, sample{
				coord: HexCoord{Q: q, R: r},
				elev:  octaveNoise(elevNoise, x, y, 4, 0.12, 0.5),
				moist: octaveNoise(moistNoise, x, y, 3, 0.09, 0.5),
			})
		}
	}
	n := len(samples)
	if n == 0 {
		return
	}

	terrain := make(map[HexCoord]Terrain, n)

	// Lowest ground floods, highest ground becomes mountains.
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].elev < samples[j].elev })
	waterN := int(math.Round(cfg.WaterRatio * float64(n)))
	mountainN := int(math.Round(cfg.MountainRatio * float64(n)))
	for i, s := range samples {
		switch {
		case i < waterN:
			terrain[s.coord] = TerrainWater
		case i >= n-mountainN:
			terrain[s.coord] = TerrainMountains
		}
	}

	// Wettest remaining land grows forest.
	var land []sample
	for _, s := range samples {
		if _, ok := terrain[s.coord]; !ok {
			land = append(land, s)
		}
	}
	sort.SliceStable(land, func(i, j int) bool { return land[i].moist > land[j].moist })
	forestN := min(int(math.Round(cfg.ForestRatio*float64(n))), len(land))
	for _, s := range land[:forestN] {
		terrain[s.coord] = TerrainForest
	}
	land = land[forestN:]

	// Upper elevation of the open land is hills, the driest is desert.
	sort.SliceStable(land, func(i, j int) bool { return land[i].elev > land[j].elev })
	hillsN := int(math.Round(hillsChance * float64(len(land))))
	for _, s := range land[:hillsN] {
		terrain[s.coord] = TerrainHills
	}
	land = land[hillsN:]
	sort.SliceStable(land, func(i, j int) bool { return land[i].moist < land[j].moist })
	desertN := int(math.Round(desertChance * float64(len(land))))
	for i, s := range land {
		if i < desertN {
			terrain[s.coord] = TerrainDesert
		} else {
			terrain[s.coord] = TerrainPlains
		}
	}

	for coord, t := range terrain {
		m.Set(&Cell{Coord: coord, Terrain: t})
	}
}

// smoothTerrain converts cells toward the dominant neighbor terrain. Mountains
// and forests never convert. Each iteration reads the grid as it was before
// the iteration started.
func smoothTerrain(m *Map, iterations int) {
	type change struct {
		cell    *Cell
		terrain Terrain
	}

	for i := 0; i < iterations; i++ {
		var changes []change
		for _, cell := range m.Cells {
			if cell.Terrain == TerrainMountains || cell.Terrain == TerrainForest {
				continue
			}
			dominant, count, ok := dominantNeighbor(m, cell.Coord)
			if ok && count >= smoothingThreshold && dominant != cell.Terrain {
				changes = append(changes, change{cell, dominant})
			}
		}
		for _, c := range changes {
			c.cell.Terrain = c.terrain
		}
	}
}

// dominantNeighbor returns the most common terrain around coord. On a tie the
// terrain met first in neighbor order wins.
func dominantNeighbor(m *Map, coord HexCoord) (Terrain, int, bool) {
	var order []Terrain
	counts := make(map[Terrain]int, 6)
	for _, nc := range coord.Neighbors() {
		nh := m.Get(nc)
		if nh == nil {
			continue
		}
		if counts[nh.Terrain] == 0 {
			order = append(order, nh.Terrain)
		}
		counts[nh.Terrain]++
	}
	if len(order) == 0 {
		return 0, 0, false
	}

	best, bestCount := order[0], counts[order[0]]
	for _, t := range order[1:] {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best, bestCount, true
}

// clearSpawnAreas turns water and mountains around both spawn anchors into
// plains so starting units are never stranded.
func clearSpawnAreas(m *Map) {
	for _, anchor := range SpawnAnchors(m.Width, m.Height) {
		nb := anchor.Neighbors()
		area := append([]HexCoord{anchor}, nb[:]...)
		for _, c := range area {
			cell := m.Get(c)
			if cell == nil {
				continue
			}
			if cell.Terrain == TerrainWater || cell.Terrain == TerrainMountains {
				cell.Terrain = TerrainPlains
			}
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
