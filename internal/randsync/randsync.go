// Package randsync provides a math/rand source that is safe to share
// across goroutines, so one seeded stream can feed identity rotation and
// backoff jitter from concurrent requests.
package randsync

import (
	"math/rand"
	"sync"
)

// Source is a rand.Source64 guarded by a mutex.
type Source struct {
	mu  sync.Mutex
	src rand.Source64
}

// NewSource returns a locked source seeded with seed.
func NewSource(seed int64) *Source {
	return &Source{src: rand.NewSource(seed).(rand.Source64)}
}

func (s *Source) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *Source) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// New returns a *rand.Rand backed by a locked source seeded with seed.
func New(seed int64) *rand.Rand {
	return rand.New(NewSource(seed))
}
