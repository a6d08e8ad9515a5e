package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/scene-engine/internal/config"
	"github.com/jwebster45206/scene-engine/internal/handlers"
	"github.com/jwebster45206/scene-engine/internal/logger"
	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/internal/services/events"
	"github.com/jwebster45206/scene-engine/internal/storage"
	"github.com/jwebster45206/scene-engine/internal/telemetry"
	"github.com/jwebster45206/scene-engine/pkg/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Scene Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"store_backend", cfg.StoreBackend)

	shutdownTracing, err := telemetry.Setup(context.Background(), "scene-engine-api", cfg.OTelEndpoint)
	if err != nil {
		log.Error("Failed to set up tracing", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	backend, err := storage.Open(storageCtx, cfg, log)
	storageCancel()
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	eventsClient := backend.Redis
	if cfg.EventsEnabled && eventsClient == nil {
		eventsClient = dialEvents(cfg.RedisURL, log)
	}

	var opts []engine.Option
	var broadcaster *events.Broadcaster
	if cfg.EventsEnabled && eventsClient != nil {
		broadcaster = events.NewBroadcaster(eventsClient, log)
		opts = append(opts, engine.WithPublisher(broadcaster))
	}
	eng := engine.New(backend.Store, log, opts...)

	if cfg.SeedOnStart {
		if _, err := eng.SeedScenes(context.Background()); err != nil {
			log.Error("Failed to seed scenes", "error", err)
			os.Exit(1)
		}
	}

	mux := http.NewServeMux()

	var eventsPinger handlers.Pinger
	if broadcaster != nil {
		eventsPinger = redisPinger{eventsClient}
	}
	mux.Handle("/health", handlers.NewHealthHandler(backend.Store, eventsPinger, log))

	sceneHandler := handlers.NewSceneHandler(eng, log)
	mux.Handle("/v1/scenes", sceneHandler)
	mux.Handle("/v1/scenes/", sceneHandler)

	mux.Handle("/v1/transitions", handlers.NewTransitionHandler(eng, log))

	sessionHandler := handlers.NewSessionHandler(eng, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	if broadcaster != nil {
		mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(broadcaster, log))
	}

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE endpoint holds connections open
		IdleTimeout: 60 * time.Second,
	}

	retentionCtx, stopRetention := context.WithCancel(context.Background())
	go runRetention(retentionCtx, eng, cfg, log)

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	stopRetention()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if eventsClient != nil && eventsClient != backend.Redis {
		if err := eventsClient.Close(); err != nil {
			log.Error("Error closing events connection", "error", err)
		}
	}
	if err := backend.Store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", "error", err)
	}

	log.Info("Server exited")
}

// dialEvents connects the pub/sub client used alongside a non-Redis store.
// Events are disabled if Redis is unreachable.
func dialEvents(redisURL string, log *slog.Logger) *redis.Client {
	client, err := storage.NewRedisClient(redisURL)
	if err != nil {
		log.Warn("Session events disabled", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Session events disabled, redis unreachable", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// runRetention deletes stale inactive sessions every CleanupInterval.
func runRetention(ctx context.Context, eng *engine.Engine, cfg *config.Config, log *slog.Logger) {
	if cfg.CleanupInterval <= 0 {
		log.Info("Session retention loop disabled")
		return
	}
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := eng.CleanupOldSessions(ctx, cfg.SessionRetentionDays)
			if err != nil {
				log.Warn("Session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("Old sessions cleaned up", "count", n, "retention_days", cfg.SessionRetentionDays)
			}
		}
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
