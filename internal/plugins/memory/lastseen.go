// Package memory provides in-process implementations of the relay's optional
// store contracts, used when no external backend is configured.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"
)

// LastSeenStore keeps last-seen timestamps in a guarded map. Contents do not
// survive a restart.
type LastSeenStore struct {
	mu   sync.RWMutex
	seen map[string]time.Time
}

func NewLastSeenStore() *LastSeenStore {
	return &LastSeenStore{seen: make(map[string]time.Time)}
}

func (s *LastSeenStore) Touch(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[userID] = at
	return nil
}

func (s *LastSeenStore) Snapshot(_ context.Context) (map[string]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.seen), nil
}
