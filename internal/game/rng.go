package game

// rng is an inline xorshift64 generator. Deterministic for a given seed,
// which keeps dice and shuffles reproducible in tests and replays.
type rng struct{ state uint64 }

func newRNG(seed uint64) *rng {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &rng{state: seed}
}

func (r *rng) next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.state = x
	return x
}

// intn returns a random number in [0, n).
func (r *rng) intn(n int) int {
	return int(r.next() % uint64(n))
}

// d6 rolls a standard die.
func (r *rng) d6() int { return r.intn(6) + 1 }
