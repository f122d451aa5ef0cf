package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relaychat/internal/core/contracts"
	"relaychat/internal/core/domain"
)

// fakeConn records every frame pushed at it and can be told to fail sends,
// standing in for a stale transport.
type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	failSend bool
	closed   bool
}

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return domain.ErrSendBufferFull
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	f.frames = append(f.frames, buf)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// envelopes decodes every recorded frame into a generic map.
func (f *fakeConn) envelopes(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, frame := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(frame, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) envelopeTypes(t *testing.T) []string {
	t.Helper()
	var types []string
	for _, env := range f.envelopes(t) {
		types = append(types, env["type"].(string))
	}
	return types
}

// fakeStore is an in-memory history store collaborator.
type fakeStore struct {
	mu    sync.Mutex
	saved []domain.StoredMessage
}

func (s *fakeStore) Save(_ context.Context, roomID, sender, content string) (domain.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := domain.StoredMessage{RoomID: roomID, Sender: sender, Content: content, CreatedAt: time.Now()}
	s.saved = append(s.saved, msg)
	return msg, nil
}

func (s *fakeStore) History(_ context.Context, roomID string, limit int) ([]domain.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []domain.StoredMessage
	for _, m := range s.saved {
		if m.RoomID == roomID && len(msgs) < limit {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

type fixture struct {
	state    *State
	delivery *DeliveryEngine
	presence *PresenceBroadcaster
	sessions *SessionController
	lastSeen *memoryLastSeen
}

type memoryLastSeen struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func (s *memoryLastSeen) Touch(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[userID] = at
	return nil
}

func (s *memoryLastSeen) Snapshot(_ context.Context) (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.seen))
	for k, v := range s.seen {
		out[k] = v
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(queueCap int, store *fakeStore) *fixture {
	log := discardLogger()
	state := NewState(queueCap)
	lastSeen := &memoryLastSeen{seen: make(map[string]time.Time)}
	delivery := NewDeliveryEngine(log, state, storeOrNil(store))
	presence := NewPresenceBroadcaster(log, state, lastSeen)
	sessions := NewSessionController(log, state, delivery, presence, storeOrNil(store), 50)
	return &fixture{state: state, delivery: delivery, presence: presence, sessions: sessions, lastSeen: lastSeen}
}

// storeOrNil keeps the engine's store a true nil interface when the fixture
// has no history store.
func storeOrNil(store *fakeStore) contracts.MessageStore {
	if store == nil {
		return nil
	}
	return store
}
