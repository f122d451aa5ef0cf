package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"relaychat/internal/core/contracts"
	"relaychat/internal/core/domain"
)

// DeliveryEngine routes one outbound message to its recipients: live send
// when the target is online, offline queue otherwise. A send failure on a
// registered connection means the remote end is gone though not yet formally
// disconnected; the dead handle is unregistered on the spot and the message
// falls through to the queue. There is no retry beyond that single fallback;
// the next redelivery opportunity is the target's reconnect drain.
type DeliveryEngine struct {
	state *State
	store contracts.MessageStore // nil when history persistence is not configured
	log   *slog.Logger
}

func NewDeliveryEngine(log *slog.Logger, state *State, store contracts.MessageStore) *DeliveryEngine {
	return &DeliveryEngine{state: state, store: store, log: log}
}

// DeliverDirect routes a direct message to one target. The returned flag
// tells the sender whether delivery was immediate or deferred; it is
// advisory, not a durability guarantee. An unknown target is queued like any
// offline user: the id space is externally owned, so the relay cannot tell
// "not yet connected" from "never will".
func (e *DeliveryEngine) DeliverDirect(ctx context.Context, sender, target, content string) (bool, time.Time) {
	sentAt := time.Now()
	payload, _ := json.Marshal(domain.DirectMessage{
		Type:      domain.TypeChat,
		From:      sender,
		Message:   content,
		Timestamp: sentAt,
	})
	msg := domain.PendingMessage{Sender: sender, Target: target, Content: content, SentAt: sentAt}

	e.state.mu.Lock()
	delivered := e.deliverOneLocked(ctx, msg, payload)
	e.state.mu.Unlock()
	return delivered, sentAt
}

// DeliverRoom fans a room message out to every member except the sender,
// applying the live-send/stale/queue decision per member independently. When
// a history store is configured the message is persisted first.
func (e *DeliveryEngine) DeliverRoom(ctx context.Context, roomID, sender, content string) {
	sentAt := time.Now()
	if e.store != nil {
		if _, err := e.store.Save(ctx, roomID, sender, content); err != nil {
			e.log.ErrorContext(ctx, "delivery - deliver room - history save failed", "room_id", roomID, "err", err)
		}
	}
	payload, _ := json.Marshal(domain.RoomMessage{
		Type:    domain.TypeMessage,
		Sender:  sender,
		Content: content,
		Time:    sentAt,
	})

	e.state.mu.Lock()
	targets := lo.Without(e.state.membersLocked(roomID), sender)
	for _, target := range targets {
		msg := domain.PendingMessage{Sender: sender, Target: target, Content: content, SentAt: sentAt}
		e.deliverOneLocked(ctx, msg, payload)
	}
	e.state.mu.Unlock()

	if len(targets) == 0 {
		e.log.DebugContext(ctx, "delivery - deliver room - no other members", "room_id", roomID, "sender", sender)
	}
}

// deliverOneLocked runs the per-target delivery step under the state lock so
// the online check and the queue append are one atomic decision. Send only
// pushes onto the connection's outbound buffer, never a network write, so
// holding the lock across it is safe.
func (e *DeliveryEngine) deliverOneLocked(ctx context.Context, msg domain.PendingMessage, payload []byte) bool {
	if conn, ok := e.state.conns[msg.Target]; ok {
		err := conn.Send(payload)
		if err == nil {
			return true
		}
		e.log.WarnContext(ctx, "delivery - send failed - dropping stale connection",
			"target", msg.Target, "err", err)
		e.state.unregisterLocked(msg.Target)
		conn.Close()
	}
	if evicted := e.state.enqueueLocked(msg); evicted > 0 {
		e.log.WarnContext(ctx, "delivery - queue cap reached - evicted oldest",
			"target", msg.Target, "evicted", evicted)
	}
	return false
}
