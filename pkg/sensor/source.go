package sensor

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Source produces the current reading whenever polled.
type Source interface {
	Poll() Reading
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() Reading

// Poll calls f().
func (f SourceFunc) Poll() Reading {
	return f()
}

// RandomSource draws each value uniformly from its simulation range.
// Every poll is independent of earlier ones.
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource creates a RandomSource seeded from the runtime.
func NewRandomSource() *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandomSource creates a RandomSource with a fixed seed.
func NewSeededRandomSource(seed1, seed2 uint64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Poll returns a fresh reading.
func (s *RandomSource) Poll() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	return NewReading(
		SystolicMin+s.rng.Int64N(SystolicMax-SystolicMin+1),
		DiastolicMin+s.rng.Int64N(DiastolicMax-DiastolicMin+1),
		PulseMin+s.rng.Int64N(PulseMax-PulseMin+1),
	)
}

// FixedSource returns a settable reading and counts polls.
type FixedSource struct {
	mu      sync.RWMutex
	reading Reading
	polls   atomic.Int64
}

// NewFixedSource creates a FixedSource returning r.
func NewFixedSource(r Reading) *FixedSource {
	if r.Units == "" {
		r.Units = Units
	}
	return &FixedSource{reading: r}
}

// Poll returns the configured reading.
func (s *FixedSource) Poll() Reading {
	s.polls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reading
}

// Set replaces the reading returned by later polls.
func (s *FixedSource) Set(r Reading) {
	if r.Units == "" {
		r.Units = Units
	}
	s.mu.Lock()
	s.reading = r
	s.mu.Unlock()
}

// Polls returns how many times Poll was called.
func (s *FixedSource) Polls() int64 {
	return s.polls.Load()
}

// Switchable forwards polls to a replaceable Source.
// The device console uses it to swap between random and fixed readings.
type Switchable struct {
	mu  sync.RWMutex
	src Source
}

// NewSwitchable creates a Switchable starting with src.
func NewSwitchable(src Source) *Switchable {
	return &Switchable{src: src}
}

// Poll polls the current source.
func (s *Switchable) Poll() Reading {
	s.mu.RLock()
	src := s.src
	s.mu.RUnlock()
	return src.Poll()
}

// Use replaces the current source.
func (s *Switchable) Use(src Source) {
	s.mu.Lock()
	s.src = src
	s.mu.Unlock()
}
