package relay

import (
	"relaychat/internal/core/contracts"
	"relaychat/internal/core/domain"
)

// Register maps a user to its live connection. It fails with
// ErrAlreadyConnected while a prior registration is live; the caller must
// reject the new connection rather than displace the existing one.
func (s *State) Register(userID string, conn contracts.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(userID, conn)
}

// Unregister removes the user's mapping if present. Idempotent.
func (s *State) Unregister(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregisterLocked(userID)
}

// Lookup returns the user's live connection, if any.
func (s *State) Lookup(userID string) (contracts.Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[userID]
	return conn, ok
}

// IsOnline reports whether the user has a live connection.
func (s *State) IsOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conns[userID]
	return ok
}

func (s *State) registerLocked(userID string, conn contracts.Connection) error {
	if _, ok := s.conns[userID]; ok {
		return domain.ErrAlreadyConnected
	}
	s.conns[userID] = conn
	return nil
}

func (s *State) unregisterLocked(userID string) {
	delete(s.conns, userID)
}

func (s *State) onlineLocked() []string {
	online := make([]string, 0, len(s.conns))
	for userID := range s.conns {
		online = append(online, userID)
	}
	return online
}
