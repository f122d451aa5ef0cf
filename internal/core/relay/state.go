// Package relay implements the in-memory connection/presence/delivery core:
// who is online, which users belong to which rooms, how a message reaches its
// recipients, and what happens when a recipient is unreachable.
package relay

import (
	"sync"

	"relaychat/internal/core/contracts"
	"relaychat/internal/core/domain"
)

// State is the process-wide container for the registry, room directory and
// offline queues. A single mutex guards all three so that every
// check-then-act sequence (duplicate-connect check, drain-then-push,
// send-or-enqueue) is atomic with respect to other connections.
type State struct {
	mu       sync.Mutex
	conns    map[string]contracts.Connection
	rooms    map[string]map[string]struct{}
	queues   map[string][]domain.PendingMessage
	queueCap int
}

// NewState builds an empty state container. queueCap bounds each user's
// offline backlog; 0 means unbounded.
func NewState(queueCap int) *State {
	s := &State{queueCap: queueCap}
	s.reset()
	return s
}

// Reset drops all connections, rooms and queues. Intended for tests.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *State) reset() {
	s.conns = make(map[string]contracts.Connection)
	s.rooms = make(map[string]map[string]struct{})
	s.queues = make(map[string][]domain.PendingMessage)
}
