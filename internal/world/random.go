package world

import "math"

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgMask       = 0x7fffffff
)

// SeededRandom is the linear congruential generator behind map generation.
// Identical seeds produce identical draw sequences.
//
// The recurrence is evaluated in float64 and wrapped to 32 bits before
// masking, so once the product passes 2^53 its low bits are rounded away.
type SeededRandom struct {
	state float64
}

// NewSeededRandom creates a generator from the seed.
func NewSeededRandom(seed int64) *SeededRandom {
	return &SeededRandom{state: float64(seed)}
}

// Next advances the generator and returns a value in [0, 1].
func (s *SeededRandom) Next() float64 {
	// Round the product before the add; no fused multiply-add.
	x := float64(s.state*lcgMultiplier) + lcgIncrement
	s.state = float64(wrap32(x) & lcgMask)
	return s.state / lcgMask
}

// wrap32 truncates x and reduces it modulo 2^32.
func wrap32(x float64) uint32 {
	m := math.Mod(math.Trunc(x), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

// Intn returns an integer in [min, max].
func (s *SeededRandom) Intn(min, max int) int {
	n := int(s.Next()*float64(max-min+1)) + min
	if n > max {
		n = max
	}
	return n
}
