package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the latest known view of the Companion sync target.
type Snapshot struct {
	Host        string
	Checked     bool
	Reachable   bool
	CurrentDate string
	HasDate     bool
	LastUpdated time.Time
	LastError   error
	// ConsecutiveFailures counts failed date reads since the last success.
	ConsecutiveFailures int
}

// IsOffline returns true when the target failed its last check or several
// reads in a row.
func (s Snapshot) IsOffline() bool {
	return (s.Checked && !s.Reachable) || s.ConsecutiveFailures >= 2
}

// Configured reports whether a host is set.
func (s Snapshot) Configured() bool {
	return s.Host != ""
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetHost starts a fresh snapshot for host. An empty host means the target
// is not configured.
func (s *Store) SetHost(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Host == host {
		return
	}
	s.snapshot = Snapshot{Host: host}
}

// RecordCheck stores the outcome of a reachability check.
func (s *Store) RecordCheck(reachable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Checked = true
	s.snapshot.Reachable = reachable
	s.snapshot.LastUpdated = time.Now()
}

// Update records a current-date read. When err is non-nil the previous date
// is kept for reference but HasDate is cleared.
func (s *Store) Update(date string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.HasDate = false
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.CurrentDate = date
	s.snapshot.HasDate = true
	s.snapshot.Checked = true
	s.snapshot.Reachable = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
