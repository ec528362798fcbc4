package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aminefth/kidsclub-sub000/internal/app"
	"github.com/aminefth/kidsclub-sub000/internal/cache"
	httpx "github.com/aminefth/kidsclub-sub000/internal/http"
	"github.com/aminefth/kidsclub-sub000/internal/live"
	"github.com/aminefth/kidsclub-sub000/internal/store"
	"github.com/aminefth/kidsclub-sub000/pkg/auth"
	"github.com/aminefth/kidsclub-sub000/pkg/metrics"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Postgres connection + migrations
	pg, err := store.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("postgres connect", "err", err)
		log.Fatal(err)
	}
	defer pg.Close()
	if err := store.RunMigrations(ctx, pg, logger); err != nil {
		logger.Error("migrations", "err", err)
		log.Fatal(err)
	}

	// Redis session cache
	sessions, err := cache.NewSessionCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("redis connect", "err", err)
		log.Fatal(err)
	}
	defer sessions.Close()

	// Live hub: credential verifier is JWT + session cache
	j := auth.New(cfg.JWTSecret)
	verifier := auth.NewVerifier(j, sessions)
	policy := live.Disconnect
	if cfg.LiveBackpressure == "drop" {
		policy = live.DropEvent
	}
	hub := live.NewHub(logger, verifier, live.Options{
		SendBuffer: cfg.LiveSendBuffer,
		Policy:     policy,
	})
	metrics.RegisterRoomGauge(hub.RoomCount)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub, pg, sessions, j, verifier)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// shutdown
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
