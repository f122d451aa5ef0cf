package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLastSeenStore_Touch_And_Snapshot(t *testing.T) {
	req := require.New(t)
	store := NewLastSeenStore()
	ctx := context.Background()

	snapshot, err := store.Snapshot(ctx)
	req.NoError(err)
	req.Empty(snapshot)

	at := time.Now().Truncate(time.Millisecond)
	req.NoError(store.Touch(ctx, "alice", at))

	snapshot, err = store.Snapshot(ctx)
	req.NoError(err)
	req.Equal(at, snapshot["alice"])

	// The snapshot is a copy; mutating it does not leak into the store
	snapshot["bob"] = time.Now()
	again, err := store.Snapshot(ctx)
	req.NoError(err)
	req.NotContains(again, "bob")
}
