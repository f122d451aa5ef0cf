package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"relaychat/internal/app/server/handlers"
	"relaychat/internal/core/relay"
	"relaychat/pkg/middleware"
)

type Server struct {
	mux       *http.ServeMux
	addr      string
	name      string
	log       *slog.Logger
	wsHandler *handlers.WSHandler
}

func New(log *slog.Logger, name, addr string, sessions *relay.SessionController, sendBuffer int) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		addr:      addr,
		name:      name,
		log:       log,
		wsHandler: handlers.NewWSHandler(log, sessions, sendBuffer),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	logging := middleware.RequestLogger(s.log)
	tracing := middleware.Tracer(s.name)
	s.mux.Handle("/ws", tracing(logging(http.HandlerFunc(s.wsHandler.Handler))))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket sessions.
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("server - start - listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
