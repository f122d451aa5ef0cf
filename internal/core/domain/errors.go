package domain

import "errors"

var (
	// ErrAlreadyConnected rejects a second connect for a user that already
	// has a live connection. Fatal to the new connection attempt only.
	ErrAlreadyConnected = errors.New("user already connected")
	// ErrMalformedMessage marks an inbound payload that failed to parse into
	// a known envelope. Rejected to the sender, no state mutation.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrClientClosed is returned by Send on a connection that was closed.
	ErrClientClosed = errors.New("client closed")
	// ErrSendBufferFull is returned by Send when the outbound buffer is full.
	// The delivery engine treats it as a stale connection.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrNotInRoom rejects a room message on a connection that never joined one.
	ErrNotInRoom = errors.New("connection did not join a room")
)
