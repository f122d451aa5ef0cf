package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"relaychat/internal/core/contracts"
	"relaychat/internal/core/domain"
)

// SessionController orchestrates the per-connection lifecycle: register,
// join, drain and announce on connect, dispatch while active, unregister and
// announce on disconnect.
type SessionController struct {
	state        *State
	delivery     *DeliveryEngine
	presence     *PresenceBroadcaster
	store        contracts.MessageStore // nil when history replay is not configured
	historyLimit int
	log          *slog.Logger
}

func NewSessionController(
	log *slog.Logger,
	state *State,
	delivery *DeliveryEngine,
	presence *PresenceBroadcaster,
	store contracts.MessageStore,
	historyLimit int,
) *SessionController {
	return &SessionController{
		state:        state,
		delivery:     delivery,
		presence:     presence,
		store:        store,
		historyLimit: historyLimit,
		log:          log,
	}
}

// Session is one active connection's state. It exists only after Connect
// succeeded; a rejected duplicate never gets one.
type Session struct {
	UserID string
	RoomID string

	ctrl *SessionController
	conn contracts.Connection
	once sync.Once
}

// Connect runs the on-connect sequence. A duplicate user id is rejected with
// an error notice and the connection closed, leaving registry, rooms and
// queues untouched. On success the drained backlog is already on the
// connection's outbound buffer before any snapshot or fresh message can
// reach it.
func (c *SessionController) Connect(ctx context.Context, userID, roomID string, conn contracts.Connection) (*Session, error) {
	// Register, join and drain are one critical section: a concurrent
	// delivery to this user either lands in the drained batch or behind it
	// on the outbound buffer, never in between and never lost.
	c.state.mu.Lock()
	if err := c.state.registerLocked(userID, conn); err != nil {
		c.state.mu.Unlock()
		c.reject(ctx, userID, conn)
		return nil, err
	}
	if roomID != "" {
		c.state.joinLocked(roomID, userID)
	}
	backlog := c.state.drainLocked(userID)
	if len(backlog) > 0 {
		data, _ := json.Marshal(domain.UnreadBatch{Type: domain.TypeUnreadBatch, Messages: backlog})
		if err := conn.Send(data); err != nil {
			c.log.WarnContext(ctx, "session - connect - unread batch send failed", "user_id", userID, "err", err)
		}
	}
	c.state.mu.Unlock()

	c.log.InfoContext(ctx, "session - connect - user registered",
		"user_id", userID, "room_id", roomID, "unread", len(backlog))

	c.replayHistory(ctx, roomID, conn)
	c.presence.AnnounceConnect(ctx, userID, roomID, conn)

	return &Session{UserID: userID, RoomID: roomID, ctrl: c, conn: conn}, nil
}

func (c *SessionController) reject(ctx context.Context, userID string, conn contracts.Connection) {
	data, _ := json.Marshal(domain.ErrorMessage{
		Type:    domain.TypeError,
		Message: fmt.Sprintf("user %q is already connected", userID),
	})
	if err := conn.Send(data); err != nil {
		c.log.WarnContext(ctx, "session - reject - error notice send failed", "user_id", userID, "err", err)
	}
	conn.Close()
	c.log.InfoContext(ctx, "session - reject - duplicate connection refused", "user_id", userID)
}

func (c *SessionController) replayHistory(ctx context.Context, roomID string, conn contracts.Connection) {
	if c.store == nil || roomID == "" {
		return
	}
	stored, err := c.store.History(ctx, roomID, c.historyLimit)
	if err != nil {
		c.log.ErrorContext(ctx, "session - connect - history load failed", "room_id", roomID, "err", err)
		return
	}
	if len(stored) == 0 {
		return
	}
	batch := domain.HistoryBatch{
		Type: domain.TypeHistory,
		Messages: lo.Map(stored, func(m domain.StoredMessage, _ int) domain.HistoryEntry {
			return domain.HistoryEntry{Sender: m.Sender, Content: m.Content, Time: m.CreatedAt}
		}),
	}
	data, _ := json.Marshal(batch)
	if err := conn.Send(data); err != nil {
		c.log.WarnContext(ctx, "session - connect - history send failed", "room_id", roomID, "err", err)
	}
}

// HandleMessage dispatches one inbound frame. Malformed payloads are rejected
// to the sender without touching shared state.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) {
	in, err := domain.DecodeInbound(raw)
	if err != nil {
		s.ctrl.log.DebugContext(ctx, "session - message - rejected malformed payload", "user_id", s.UserID, "err", err)
		s.sendError(err)
		return
	}

	switch in.Type {
	case domain.TypeChat:
		delivered, sentAt := s.ctrl.delivery.DeliverDirect(ctx, s.UserID, in.To, in.Message)
		ack, _ := json.Marshal(domain.DeliveryStatus{
			Type:      domain.TypeDeliveryStatus,
			To:        in.To,
			Delivered: delivered,
			Timestamp: sentAt,
		})
		if err := s.conn.Send(ack); err != nil {
			s.ctrl.log.WarnContext(ctx, "session - message - delivery status send failed", "user_id", s.UserID, "err", err)
		}
	case domain.TypeMessage:
		if s.RoomID == "" {
			s.sendError(domain.ErrNotInRoom)
			return
		}
		s.ctrl.delivery.DeliverRoom(ctx, s.RoomID, s.UserID, in.Content)
	}
}

func (s *Session) sendError(cause error) {
	msg := cause.Error()
	if errors.Is(cause, domain.ErrMalformedMessage) {
		msg = domain.ErrMalformedMessage.Error()
	}
	data, _ := json.Marshal(domain.ErrorMessage{Type: domain.TypeError, Message: msg})
	_ = s.conn.Send(data)
}

// Close runs the on-disconnect sequence exactly once: unregister and announce
// departure. Terminal; no further state mutation for this session.
func (s *Session) Close(ctx context.Context) {
	s.once.Do(func() {
		s.ctrl.state.mu.Lock()
		// After a stale-connection recovery the user may already be back with
		// a fresh connection; tearing down state then would hit the new
		// session, so a replaced session just goes quiet.
		current, ok := s.ctrl.state.conns[s.UserID]
		replaced := ok && current != s.conn
		if !replaced {
			s.ctrl.state.unregisterLocked(s.UserID)
		}
		// Room membership survives the disconnect: an offline member keeps
		// receiving deferred room messages, replayed on its next connect.
		s.ctrl.state.mu.Unlock()

		if replaced {
			return
		}
		s.ctrl.presence.AnnounceDisconnect(ctx, s.UserID, s.RoomID)
		s.ctrl.log.InfoContext(ctx, "session - close - user disconnected", "user_id", s.UserID, "room_id", s.RoomID)
	})
}
