package domain

import (
	"time"

	"github.com/google/uuid"
)

// User and room identifiers are opaque strings supplied by the caller at
// connect time. The relay never generates them.

// PendingMessage is a message that could not be delivered immediately. It is
// owned by the offline queue until the target's next connect drains it.
type PendingMessage struct {
	Sender  string    `json:"sender"`
	Target  string    `json:"-"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"time"`
}

// StoredMessage is a room message persisted by the external history store.
type StoredMessage struct {
	ID        uuid.UUID
	RoomID    string
	Sender    string
	Content   string
	CreatedAt time.Time
}
