package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jwebster45206/scene-engine/internal/config"
	"github.com/jwebster45206/scene-engine/internal/logger"
	"github.com/jwebster45206/scene-engine/internal/storage"
	"github.com/jwebster45206/scene-engine/pkg/engine"
)

// seed writes the compiled scene catalog into the configured store and
// reports any scene that fails validation.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log := logger.Setup(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer backend.Store.Close()

	eng := engine.New(backend.Store, log)
	n, err := eng.SeedScenes(ctx)
	if err != nil {
		log.Error("Seeding failed", "error", err, "seeded", n)
		os.Exit(1)
	}

	reports, err := eng.ValidateAll(ctx)
	if err != nil {
		log.Error("Failed to validate seeded scenes", "error", err)
		os.Exit(1)
	}
	invalid := 0
	for _, r := range reports {
		if !r.OK {
			invalid++
		}
	}
	log.Info("Seed complete", "backend", cfg.StoreBackend, "scenes", n, "invalid", invalid)
	if invalid > 0 {
		os.Exit(1)
	}
}
