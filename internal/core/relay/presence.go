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

// PresenceBroadcaster translates connect/disconnect events into notifications
// for other online users and gives a newly connected user a consistent
// snapshot of the world.
//
// Scope: a connection that joined a room announces to and snapshots only
// fellow room members ("status" events); a room-less connection uses the flat
// global model ("presence" events). Every per-peer send is best-effort: one
// unreachable peer never aborts the rest of the fan-out and never surfaces as
// an error on the triggering connect or disconnect.
type PresenceBroadcaster struct {
	state    *State
	lastSeen contracts.LastSeenStore
	log      *slog.Logger
}

func NewPresenceBroadcaster(log *slog.Logger, state *State, lastSeen contracts.LastSeenStore) *PresenceBroadcaster {
	return &PresenceBroadcaster{state: state, lastSeen: lastSeen, log: log}
}

// AnnounceConnect sends the user its snapshot and notifies its peers that it
// came online.
func (b *PresenceBroadcaster) AnnounceConnect(ctx context.Context, userID, roomID string, conn contracts.Connection) {
	online, peers := b.scope(userID, roomID)

	snapshot := domain.UserList{
		Type:        domain.TypeUserList,
		OnlineUsers: online,
		LastSeen:    b.offlineLastSeen(ctx, userID),
	}
	if data, err := json.Marshal(snapshot); err == nil {
		if err := conn.Send(data); err != nil {
			b.log.WarnContext(ctx, "presence - connect - snapshot send failed", "user_id", userID, "err", err)
		}
	}

	var event any
	if roomID != "" {
		event = domain.StatusEvent{Type: domain.TypeStatus, User: userID, Status: domain.StatusOnline}
	} else {
		event = domain.PresenceEvent{
			Type:      domain.TypePresence,
			UserID:    userID,
			Status:    domain.StatusOnline,
			Timestamp: time.Now(),
		}
	}
	b.notify(ctx, peers, event)
}

// AnnounceDisconnect records the user's last-seen time and notifies its peers
// that it went offline.
func (b *PresenceBroadcaster) AnnounceDisconnect(ctx context.Context, userID, roomID string) {
	now := time.Now()
	if err := b.lastSeen.Touch(ctx, userID, now); err != nil {
		b.log.ErrorContext(ctx, "presence - disconnect - last seen update failed", "user_id", userID, "err", err)
	}

	_, peers := b.scope(userID, roomID)
	var event any
	if roomID != "" {
		event = domain.StatusEvent{Type: domain.TypeStatus, User: userID, Status: domain.StatusOffline}
	} else {
		event = domain.PresenceEvent{
			Type:      domain.TypePresence,
			UserID:    userID,
			Status:    domain.StatusOffline,
			Timestamp: now,
			LastSeen:  &now,
		}
	}
	b.notify(ctx, peers, event)
}

// scope resolves the fan-out set for a user: online fellow room members when
// a room is given, all other online users otherwise. The subject itself is
// never part of either result.
func (b *PresenceBroadcaster) scope(userID, roomID string) ([]string, map[string]contracts.Connection) {
	b.state.mu.Lock()
	defer b.state.mu.Unlock()

	var candidates []string
	if roomID != "" {
		candidates = b.state.membersLocked(roomID)
	} else {
		candidates = b.state.onlineLocked()
	}

	peers := make(map[string]contracts.Connection)
	var online []string
	for _, peer := range lo.Without(candidates, userID) {
		conn, ok := b.state.conns[peer]
		if !ok {
			continue
		}
		online = append(online, peer)
		peers[peer] = conn
	}
	return online, peers
}

// offlineLastSeen filters the store snapshot down to users that are actually
// offline right now; online state always derives from the registry.
func (b *PresenceBroadcaster) offlineLastSeen(ctx context.Context, userID string) map[string]time.Time {
	seen, err := b.lastSeen.Snapshot(ctx)
	if err != nil {
		b.log.WarnContext(ctx, "presence - connect - last seen snapshot failed", "err", err)
		return map[string]time.Time{}
	}
	return lo.PickBy(seen, func(peer string, _ time.Time) bool {
		return peer != userID && !b.state.IsOnline(peer)
	})
}

// notify fans an event out to each peer independently. Failures are logged
// and swallowed.
func (b *PresenceBroadcaster) notify(ctx context.Context, peers map[string]contracts.Connection, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	for peer, conn := range peers {
		if err := conn.Send(data); err != nil {
			b.log.WarnContext(ctx, "presence - notify - peer send failed", "peer", peer, "err", err)
		}
	}
}
