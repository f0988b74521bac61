package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"meal-route-service/internal/adapters/repositories"
	"meal-route-service/internal/config"
	"meal-route-service/internal/platform/db"
	"meal-route-service/internal/platform/obs"
	"os"
	"strings"
)

func main() {
	seed := flag.Bool("seed", true, "load demo deliveries from SEED_PATH after creating the schema")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "err", err)
		os.Exit(1)
	}
	obs.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		slog.Error("open database failed", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, cfg.SeedPath, *seed); err != nil {
		slog.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, seed bool) error {
	slog.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("schema ready")

	if !seed {
		return nil
	}

	slog.Info("seeding database", "path", seedPath)
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("seeding complete")

	return nil
}
