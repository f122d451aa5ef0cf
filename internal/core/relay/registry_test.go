package relay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"relaychat/internal/core/domain"
)

func TestRegistry_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	state := NewState(0)
	conn := &fakeConn{}

	// Given no one is connected
	req.False(state.IsOnline("alice"))

	// When alice registers
	req.NoError(state.Register("alice", conn))

	// Then she is online and her connection resolves
	req.True(state.IsOnline("alice"))
	got, ok := state.Lookup("alice")
	req.True(ok)
	req.Same(conn, got.(*fakeConn))
}

func TestRegistry_Second_Register_Is_Rejected(t *testing.T) {
	req := require.New(t)
	state := NewState(0)
	first := &fakeConn{}
	second := &fakeConn{}

	req.NoError(state.Register("alice", first))

	// When a second registration arrives for the same user
	err := state.Register("alice", second)

	// Then it fails and the original mapping is untouched
	req.ErrorIs(err, domain.ErrAlreadyConnected)
	got, ok := state.Lookup("alice")
	req.True(ok)
	req.Same(first, got.(*fakeConn))
}

func TestRegistry_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	state := NewState(0)

	req.NoError(state.Register("alice", &fakeConn{}))
	state.Unregister("alice")
	req.False(state.IsOnline("alice"))

	// A second unregister is a no-op
	state.Unregister("alice")
	req.False(state.IsOnline("alice"))

	// And alice can register again
	req.NoError(state.Register("alice", &fakeConn{}))
}
