package scoring

// Source is a seedable deterministic stream of floats in [0,1). The same
// seed always yields the same full sequence, which the dataset generator
// relies on for reproducible training sets.
type Source struct {
	state uint32
}

// NewSource creates a stream seeded from the low 32 bits of seed.
func NewSource(seed int64) *Source {
	return &Source{state: uint32(seed)}
}

// Float64 advances the stream and returns the next value in [0,1).
// 32-bit mixing in the mulberry32 family.
func (s *Source) Float64() float64 {
	s.state += 0x6d2b79f5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / (1 << 32)
}

// intn returns a uniform index in [0,n) drawn from the stream.
func (s *Source) intn(n int) int {
	idx := int(s.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
