package distribution

import "sync"

// StateStore persists the engine's own state.
type StateStore interface {
	LastDistributedDay() (int64, error)
	SetLastDistributedDay(day int64) error
	ClaimEnabled() (bool, error)
	SetClaimEnabled(enabled bool) error
}

// MemState is an in-memory StateStore.
type MemState struct {
	mu           sync.RWMutex
	lastDay      int64
	claimEnabled bool
}

// Compile-time interface check.
var _ StateStore = (*MemState)(nil)

// NewMemState creates a MemState starting after lastDay.
func NewMemState(lastDay int64) *MemState {
	return &MemState{lastDay: lastDay}
}

func (s *MemState) LastDistributedDay() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDay, nil
}

func (s *MemState) SetLastDistributedDay(day int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDay = day
	return nil
}

func (s *MemState) ClaimEnabled() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claimEnabled, nil
}

func (s *MemState) SetClaimEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimEnabled = enabled
	return nil
}
