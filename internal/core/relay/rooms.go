package relay

// Join adds a user to a room, creating the room on first use. Idempotent.
func (s *State) Join(roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinLocked(roomID, userID)
}

// Leave removes a user from a room. A room whose last member leaves is
// deleted entirely; an empty room never exists.
func (s *State) Leave(roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked(roomID, userID)
}

// Members returns the current member set of a room, empty if absent.
func (s *State) Members(roomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membersLocked(roomID)
}

func (s *State) joinLocked(roomID, userID string) {
	if s.rooms[roomID] == nil {
		s.rooms[roomID] = make(map[string]struct{})
	}
	s.rooms[roomID][userID] = struct{}{}
}

func (s *State) leaveLocked(roomID, userID string) {
	members, ok := s.rooms[roomID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(s.rooms, roomID)
	}
}

func (s *State) membersLocked(roomID string) []string {
	members := make([]string, 0, len(s.rooms[roomID]))
	for userID := range s.rooms[roomID] {
		members = append(members, userID)
	}
	return members
}
