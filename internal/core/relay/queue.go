package relay

import "relaychat/internal/core/domain"

// Enqueue appends a message to the tail of the target's offline backlog,
// creating it on first use. When a per-user cap is configured and exceeded,
// the oldest entry is evicted; the most recent messages are the ones a
// returning user needs. Returns the number of evicted entries.
func (s *State) Enqueue(msg domain.PendingMessage) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enqueueLocked(msg)
}

// Drain atomically removes and returns the target's entire backlog in
// original send order. A second drain without intervening enqueues returns
// nothing.
func (s *State) Drain(userID string) []domain.PendingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked(userID)
}

func (s *State) enqueueLocked(msg domain.PendingMessage) int {
	backlog := append(s.queues[msg.Target], msg)
	evicted := 0
	if s.queueCap > 0 && len(backlog) > s.queueCap {
		evicted = len(backlog) - s.queueCap
		backlog = backlog[evicted:]
	}
	s.queues[msg.Target] = backlog
	return evicted
}

func (s *State) drainLocked(userID string) []domain.PendingMessage {
	backlog := s.queues[userID]
	delete(s.queues, userID)
	return backlog
}
