package contracts

import (
	"context"
	"time"
)

// LastSeenStore records when a user was last connected. Online state is
// derived from the connection registry, never from this store; snapshots of
// it are filtered against the registry before they reach a client.
type LastSeenStore interface {
	// Touch records the disconnect time for a user.
	Touch(ctx context.Context, userID string, at time.Time) error
	// Snapshot returns the last-seen time of every user known to the store.
	Snapshot(ctx context.Context) (map[string]time.Time, error)
}
