package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	TypeUserList       = "user_list"
	TypePresence       = "presence"
	TypeStatus         = "status"
	TypeError          = "error"
	TypeChat           = "chat"
	TypeDeliveryStatus = "delivery_status"
	TypeMessage        = "message"
	TypeUnreadBatch    = "unread_batch"
	TypeHistory        = "history"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// UserList is the snapshot a user receives once on connect: who is online
// right now and when everyone else was last seen.
type UserList struct {
	Type        string               `json:"type"` // "user_list"
	OnlineUsers []string             `json:"online_users"`
	LastSeen    map[string]time.Time `json:"last_seen"`
}

// PresenceEvent notifies a peer that a user went online or offline.
type PresenceEvent struct {
	Type      string     `json:"type"` // "presence"
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// StatusEvent is the room-scoped presence notification.
type StatusEvent struct {
	Type   string `json:"type"` // "status"
	User   string `json:"user"`
	Status string `json:"status"`
}

// ErrorMessage is a wire-safe error sent to one client.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// DirectMessage is a relayed direct chat message.
type DirectMessage struct {
	Type      string    `json:"type"` // "chat"
	From      string    `json:"from"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryStatus acks a direct message back to its sender. Advisory only.
type DeliveryStatus struct {
	Type      string    `json:"type"` // "delivery_status"
	To        string    `json:"to"`
	Delivered bool      `json:"delivered"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomMessage is a message broadcast to room members.
type RoomMessage struct {
	Type    string    `json:"type"` // "message"
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// UnreadBatch replays a user's offline backlog on reconnect, before any
// other traffic reaches the connection.
type UnreadBatch struct {
	Type     string           `json:"type"` // "unread_batch"
	Messages []PendingMessage `json:"messages"`
}

// HistoryEntry is one persisted room message replayed on connect.
type HistoryEntry struct {
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// HistoryBatch replays stored room history to a connecting member.
type HistoryBatch struct {
	Type     string         `json:"type"` // "history"
	Messages []HistoryEntry `json:"messages"`
}

// Inbound is the closed set of client-to-server envelopes: a direct "chat"
// addressed to a user, or a room "message" broadcast to fellow members.
type Inbound struct {
	Type    string `json:"type" validate:"required,oneof=chat message"`
	To      string `json:"to" validate:"required_if=Type chat"`
	Message string `json:"message" validate:"required_if=Type chat"`
	Content string `json:"content" validate:"required_if=Type message"`
}

var validate = validator.New()

// DecodeInbound parses and validates one client frame. Any failure maps to
// ErrMalformedMessage so callers never see a raw decode error on the wire path.
func DecodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return in, nil
}
