// Package summary accumulates per-user toxicity scores and drains them into
// periodic digest messages.
package summary

import (
	"sync"
	"time"
)

type Entry struct {
	UserID string
	Score  float64
	At     time.Time
}

// Store is the only mutable state shared across concurrent pipeline runs.
// Appends are safe under concurrent writers; Drain reads and clears the whole
// log under one lock so a racing append lands in the next period, never lost
// mid-drain.
type Store struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

func NewStore() *Store {
	return &Store{
		entries: map[string][]Entry{},
	}
}

func (s *Store) Append(userID string, score float64, at time.Time) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	s.entries[userID] = append(s.entries[userID], Entry{UserID: userID, Score: score, At: at})
	s.mu.Unlock()
}

// Drain returns all recorded entries and clears the log in one step.
func (s *Store) Drain() map[string][]Entry {
	s.mu.Lock()
	drained := s.entries
	s.entries = map[string][]Entry{}
	s.mu.Unlock()
	return drained
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, entries := range s.entries {
		total += len(entries)
	}
	return total
}
