package cities

import (
	"fmt"
	"math/rand"
)

var namePrefixes = []string{
	"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
	"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
	"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
	"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
}

var nameSuffixes = []string{
	"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
	"stead", "wood", "field", "dale", "crest", "vale", "port",
	"town", "bury", "marsh", "well", "brook", "cliff", "moor",
	"ridge", "watch", "fall", "rest", "point", "reach", "helm",
}

// NameGenerator produces unique procedural city names by combining syllables.
type NameGenerator struct {
	rng  *rand.Rand
	used map[string]bool
}

// NewNameGenerator creates a generator; the same seed yields the same names.
func NewNameGenerator(seed int64) *NameGenerator {
	return &NameGenerator{
		rng:  rand.New(rand.NewSource(seed + 200)),
		used: make(map[string]bool),
	}
}

// Next returns a name not handed out before. Once the syllable space is
// exhausted names gain a numeric suffix.
func (g *NameGenerator) Next() string {
	capacity := len(namePrefixes) * len(nameSuffixes)
	for attempts := 0; attempts < capacity*4; attempts++ {
		name := namePrefixes[g.rng.Intn(len(namePrefixes))] + nameSuffixes[g.rng.Intn(len(nameSuffixes))]
		if !g.used[name] {
			g.used[name] = true
			return name
		}
	}
	name := fmt.Sprintf("%s%s %d", namePrefixes[0], nameSuffixes[0], len(g.used)+1)
	g.used[name] = true
	return name
}
