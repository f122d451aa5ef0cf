package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresence_Connect_Sends_Snapshot_Without_Self(t *testing.T) {
	req := require.New(t)
	fx := newFixture(0, nil)
	bob := &fakeConn{}
	req.NoError(fx.state.Register("bob", bob))
	req.NoError(fx.lastSeen.Touch(context.Background(), "carol", time.Now().Add(-time.Hour)))

	alice := &fakeConn{}
	req.NoError(fx.state.Register("alice", alice))

	// When alice's arrival is announced (global scope)
	fx.presence.AnnounceConnect(context.Background(), "alice", "", alice)

	// Then her snapshot lists bob online and carol's last-seen, never herself
	envs := alice.envelopes(t)
	req.Len(envs, 1)
	req.Equal("user_list", envs[0]["type"])
	req.Equal([]any{"bob"}, envs[0]["online_users"])
	lastSeen := envs[0]["last_seen"].(map[string]any)
	req.Contains(lastSeen, "carol")
	req.NotContains(lastSeen, "alice")

	// And bob is notified that alice is online
	bobEnvs := bob.envelopes(t)
	req.Len(bobEnvs, 1)
	req.Equal("presence", bobEnvs[0]["type"])
	req.Equal("alice", bobEnvs[0]["user_id"])
	req.Equal("online", bobEnvs[0]["status"])
}

func TestPresence_Snapshot_Ignores_LastSeen_Of_Online_Users(t *testing.T) {
	req := require.New(t)
	fx := newFixture(0, nil)

	// bob disconnected once, then came back
	req.NoError(fx.lastSeen.Touch(context.Background(), "bob", time.Now().Add(-time.Minute)))
	req.NoError(fx.state.Register("bob", &fakeConn{}))

	alice := &fakeConn{}
	req.NoError(fx.state.Register("alice", alice))
	fx.presence.AnnounceConnect(context.Background(), "alice", "", alice)

	// Online state derives from the registry, not the last-seen record
	envs := alice.envelopes(t)
	req.Equal([]any{"bob"}, envs[0]["online_users"])
	req.Empty(envs[0]["last_seen"])
}

func TestPresence_Disconnect_Records_LastSeen_And_Notifies_Peers(t *testing.T) {
	req := require.New(t)
	fx := newFixture(0, nil)
	bob := &fakeConn{}
	req.NoError(fx.state.Register("bob", bob))

	// When alice's departure is announced
	fx.presence.AnnounceDisconnect(context.Background(), "alice", "")

	// Then her last-seen is recorded
	seen, err := fx.lastSeen.Snapshot(context.Background())
	req.NoError(err)
	req.Contains(seen, "alice")

	// And bob gets the offline event carrying it
	envs := bob.envelopes(t)
	req.Len(envs, 1)
	req.Equal("presence", envs[0]["type"])
	req.Equal("offline", envs[0]["status"])
	req.NotEmpty(envs[0]["last_seen"])
}

func TestPresence_Room_Scope_Notifies_Only_Fellow_Members(t *testing.T) {
	req := require.New(t)
	fx := newFixture(0, nil)
	bob := &fakeConn{}
	dave := &fakeConn{}
	req.NoError(fx.state.Register("bob", bob))
	fx.state.Join("r1", "bob")
	req.NoError(fx.state.Register("dave", dave)) // online, different scope

	alice := &fakeConn{}
	req.NoError(fx.state.Register("alice", alice))
	fx.state.Join("r1", "alice")

	fx.presence.AnnounceConnect(context.Background(), "alice", "r1", alice)

	// Room scope uses "status" events and never leaks outside the room
	bobEnvs := bob.envelopes(t)
	req.Len(bobEnvs, 1)
	req.Equal("status", bobEnvs[0]["type"])
	req.Equal("alice", bobEnvs[0]["user"])
	req.Equal("online", bobEnvs[0]["status"])
	req.Empty(dave.envelopes(t))
}

func TestPresence_One_Failing_Peer_Does_Not_Stop_Fanout(t *testing.T) {
	req := require.New(t)
	fx := newFixture(0, nil)
	broken := &fakeConn{failSend: true}
	healthy := &fakeConn{}
	req.NoError(fx.state.Register("broken", broken))
	req.NoError(fx.state.Register("healthy", healthy))

	alice := &fakeConn{}
	req.NoError(fx.state.Register("alice", alice))
	fx.presence.AnnounceConnect(context.Background(), "alice", "", alice)

	// The broken peer is skipped, the healthy one still hears about alice
	envs := healthy.envelopes(t)
	req.Len(envs, 1)
	req.Equal("alice", envs[0]["user_id"])
}
