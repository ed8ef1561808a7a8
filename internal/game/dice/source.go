package dice

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// rngSource adapts a math/rand/v2 generator to Source. It is safe for
// concurrent use.
type rngSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Intn returns a value in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (s *rngSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewCryptoSource returns a ChaCha8 Source keyed once from crypto/rand, so
// sessions are unpredictable without a syscall per die.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	var key [32]byte
	_, _ = crand.Read(key[:]) // never fails on supported platforms
	return &rngSource{rng: rand.New(rand.NewChaCha8(key))}
}

// NewSeededSource returns a deterministic Source for replaying a session.
// Two sources built from the same seed produce the same sequence.
func NewSeededSource(seed uint64) Source {
	return &rngSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
