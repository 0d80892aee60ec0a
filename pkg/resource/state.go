package resource

import (
	"sync"

	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
)

// State is the mutable state of one resource: its live reading and its
// observation status. A single mutex guards both so a reader never sees a
// half-updated reading.
type State struct {
	mu      sync.Mutex
	source  sensor.Source
	reading sensor.Reading
	status  observe.Status
	polls   uint64

	onRefresh func(sensor.Reading)
}

// NewState creates an Idle state polling src.
func NewState(src sensor.Source) *State {
	return &State{
		source: src,
		status: observe.Idle,
	}
}

// OnRefresh sets a callback invoked after every poll, outside the lock.
func (s *State) OnRefresh(fn func(sensor.Reading)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

// Refresh polls the source once and stores the result as the live reading.
func (s *State) Refresh() sensor.Reading {
	s.mu.Lock()
	r := s.source.Poll()
	s.reading = r
	s.polls++
	cb := s.onRefresh
	s.mu.Unlock()

	if cb != nil {
		cb(r)
	}
	return r
}

// Reading returns the live reading without polling.
func (s *State) Reading() sensor.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading
}

// Polls returns how many times the source was polled.
func (s *State) Polls() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// Status returns the observation status.
func (s *State) Status() observe.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CompareAndSwapStatus sets the status to next if it currently is old.
func (s *State) CompareAndSwapStatus(old, next observe.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != old {
		return false
	}
	s.status = next
	return true
}
