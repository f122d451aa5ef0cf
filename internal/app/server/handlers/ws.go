package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"relaychat/internal/app/server/ws"
	"relaychat/internal/core/relay"
	"relaychat/pkg/middleware"
)

// WSHandler upgrades inbound connections and hands them to the session
// controller. A connection is addressed by caller-supplied query params:
// `user` (required) and `room` (optional).
type WSHandler struct {
	sessions   *relay.SessionController
	sendBuffer int
	log        *slog.Logger
}

func NewWSHandler(log *slog.Logger, sessions *relay.SessionController, sendBuffer int) *WSHandler {
	return &WSHandler{sessions: sessions, sendBuffer: sendBuffer, log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten later
	},
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	roomID := r.URL.Query().Get("room")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("chat.user_id", userID),
		attribute.String("chat.room_id", roomID),
	)
	log := middleware.FromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", "user_id", userID, "err", err)
		return
	}

	// The session outlives the HTTP request; detach from its cancellation.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	socket := ws.NewWebSocket(ctx, h.log, conn)
	client := ws.NewClient(ctx, socket, h.sendBuffer)

	sess, err := h.sessions.Connect(ctx, userID, roomID, client)
	if err != nil {
		// Connect already sent the error notice and closed the connection.
		return
	}
	defer client.Close()
	defer sess.Close(ctx)

	log.InfoContext(ctx, "ws handler - connection established", "user_id", userID, "room_id", roomID)

	socket.ReadLoop(func(data []byte) {
		sess.HandleMessage(ctx, data)
	})
}
