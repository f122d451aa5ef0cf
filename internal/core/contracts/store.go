package contracts

import (
	"context"

	"relaychat/internal/core/domain"
)

// MessageStore is the external history collaborator. The relay core works
// without one; when configured, room messages are saved on delivery and
// history is replayed to connecting members.
type MessageStore interface {
	Save(ctx context.Context, roomID, sender, content string) (domain.StoredMessage, error)
	History(ctx context.Context, roomID string, limit int) ([]domain.StoredMessage, error)
}
