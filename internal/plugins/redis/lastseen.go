package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastSeenKey = "lastseen"

// LastSeenStore keeps last-seen timestamps in a redis hash so they survive
// process restarts.
type LastSeenStore struct {
	rdb *redis.Client
}

func NewLastSeenStore(rdb *redis.Client) *LastSeenStore {
	return &LastSeenStore{rdb: rdb}
}

func (s *LastSeenStore) Touch(ctx context.Context, userID string, at time.Time) error {
	return s.rdb.HSet(ctx, lastSeenKey, userID, at.UnixMilli()).Err()
}

func (s *LastSeenStore) Snapshot(ctx context.Context) (map[string]time.Time, error) {
	raw, err := s.rdb.HGetAll(ctx, lastSeenKey).Result()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]time.Time, len(raw))
	for userID, value := range raw {
		millis, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		seen[userID] = time.UnixMilli(millis)
	}
	return seen, nil
}
