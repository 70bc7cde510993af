// Package rand provides seedable random number generation for reproducible
// permutation sampling. It implements the Mersenne Twister (MT19937)
// algorithm so that identical seeds yield identical shuffle sequences across
// platforms, independent of the Go runtime's math/rand internals.
package rand

const (
	mtN        = 624
	mtM        = 397
	matrixA    = 0x9908b0df
	upperMask  = 0x80000000
	lowerMask  = 0x7fffffff
	temperingB = 0x9d2c5680
	temperingC = 0xefc60000
)

// MT19937 is a Mersenne Twister random number generator.
// It is not safe for concurrent use; give each worker its own instance.
type MT19937 struct {
	mt  [mtN]uint32
	mti int
}

// New creates a new Mersenne Twister seeded from a 64-bit seed.
func New(seed int64) *MT19937 {
	mt := &MT19937{}
	mt.Seed(seed)
	return mt
}

// Seed initializes the generator. The 64-bit seed is folded to 32 bits so
// that seeds differing only in their high word still produce distinct
// streams.
func (mt *MT19937) Seed(seed int64) {
	s := uint32(uint64(seed) ^ uint64(seed)>>32)
	mt.mt[0] = s
	for i := 1; i < mtN; i++ {
		mt.mt[i] = 1812433253*(mt.mt[i-1]^(mt.mt[i-1]>>30)) + uint32(i)
	}
	mt.mti = mtN
}

// Uint32 generates a random uint32.
func (mt *MT19937) Uint32() uint32 {
	var y uint32
	mag01 := [2]uint32{0, matrixA}

	if mt.mti >= mtN {
		// Generate N words at a time
		var kk int
		for kk = 0; kk < mtN-mtM; kk++ {
			y = (mt.mt[kk] & upperMask) | (mt.mt[kk+1] & lowerMask)
			mt.mt[kk] = mt.mt[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
		}
		for ; kk < mtN-1; kk++ {
			y = (mt.mt[kk] & upperMask) | (mt.mt[kk+1] & lowerMask)
			mt.mt[kk] = mt.mt[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01[y&1]
		}
		y = (mt.mt[mtN-1] & upperMask) | (mt.mt[0] & lowerMask)
		mt.mt[mtN-1] = mt.mt[mtM-1] ^ (y >> 1) ^ mag01[y&1]
		mt.mti = 0
	}

	y = mt.mt[mt.mti]
	mt.mti++

	// Tempering
	y ^= y >> 11
	y ^= (y << 7) & temperingB
	y ^= (y << 15) & temperingC
	y ^= y >> 18

	return y
}

// Float64 generates a random float64 in [0, 1) with 53-bit precision.
func (mt *MT19937) Float64() float64 {
	a := mt.Uint32() >> 5
	b := mt.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}

// Intn returns a random int in [0, n). It panics if n <= 0.
func (mt *MT19937) Intn(n int) int {
	if n <= 0 {
		panic("rand: Intn called with n <= 0")
	}
	// Rejection sampling to avoid modulo bias.
	max := uint32(0xFFFFFFFF)
	limit := max - max%uint32(n)
	for {
		v := mt.Uint32()
		if v < limit {
			return int(v % uint32(n))
		}
	}
}

// Shuffle permutes n elements in place using the Fisher-Yates algorithm,
// calling swap for each exchange.
func (mt *MT19937) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := mt.Intn(i + 1)
		swap(i, j)
	}
}

// Derive mixes a base seed with a stream index, so that independent workers
// can each own a deterministic generator derived from one user-visible seed.
// The mixing follows the SplitMix64 finalizer.
func Derive(base int64, stream int) int64 {
	z := uint64(base) + 0x9E3779B97F4A7C15*uint64(stream+1)
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
