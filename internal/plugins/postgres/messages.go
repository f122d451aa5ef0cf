package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"relaychat/internal/core/domain"
)

// MessageStore persists room messages for history replay.
//
// Expected schema:
//
//	CREATE TABLE messages (
//	    id         UUID PRIMARY KEY,
//	    room_id    TEXT NOT NULL,
//	    sender     TEXT NOT NULL,
//	    content    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX messages_room_idx ON messages (room_id, created_at);
type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (r *MessageStore) Save(ctx context.Context, roomID, sender, content string) (domain.StoredMessage, error) {
	msg := domain.StoredMessage{
		ID:      uuid.New(),
		RoomID:  roomID,
		Sender:  sender,
		Content: content,
	}
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO messages (id, room_id, sender, content)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, msg.ID, msg.RoomID, msg.Sender, msg.Content).Scan(&msg.CreatedAt)
	if err != nil {
		return domain.StoredMessage{}, err
	}
	return msg, nil
}

func (r *MessageStore) History(ctx context.Context, roomID string, limit int) ([]domain.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, room_id, sender, content, created_at
        FROM messages
        WHERE room_id = $1
        ORDER BY created_at ASC
        LIMIT $2
    `, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.StoredMessage
	for rows.Next() {
		var m domain.StoredMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
