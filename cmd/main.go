package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relaychat/internal/app/server"
	"relaychat/internal/config"
	"relaychat/internal/core/contracts"
	"relaychat/internal/core/relay"
	"relaychat/internal/platform/logger"
	"relaychat/internal/platform/telemetry"
	"relaychat/internal/plugins/memory"
	"relaychat/internal/plugins/postgres"
	redisPlugin "relaychat/internal/plugins/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	log := logger.New(cfg)
	log.Info("starting relay")

	if cfg.Tracer.Addr != "" {
		shutdown, err := telemetry.Init(ctx, cfg)
		if err != nil {
			log.Error("telemetry init failed", "err", err)
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(flushCtx); err != nil {
					log.Error("telemetry shutdown failed", "err", err)
				}
			}()
		}
	}

	// History store: durable when postgres is configured, absent otherwise.
	var store contracts.MessageStore
	if cfg.Postgres.DSN != "" {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			log.Error("postgres connection failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		store = postgres.NewMessageStore(db)
		log.Info("postgres connected")
	}

	// Last-seen store: redis-backed when configured, in-memory otherwise.
	var lastSeen contracts.LastSeenStore = memory.NewLastSeenStore()
	if cfg.Redis.URL != "" {
		rdb, err := redisPlugin.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Error("redis connection failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		lastSeen = redisPlugin.NewLastSeenStore(rdb)
		log.Info("redis connected")
	}

	state := relay.NewState(cfg.Relay.QueueMaxPerUser)
	delivery := relay.NewDeliveryEngine(log, state, store)
	presence := relay.NewPresenceBroadcaster(log, state, lastSeen)
	sessions := relay.NewSessionController(log, state, delivery, presence, store, cfg.Relay.HistoryLimit)

	srv := server.New(log, cfg.Service.Name, cfg.Service.Addr, sessions, cfg.Relay.SendBuffer)
	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shut down cleanly")
}
