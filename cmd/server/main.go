package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"meal-route-service/internal/adapters/cache"
	"meal-route-service/internal/adapters/geocode"
	"meal-route-service/internal/adapters/repositories"
	"meal-route-service/internal/api"
	"meal-route-service/internal/api/handlers"
	"meal-route-service/internal/config"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/db"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"meal-route-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Nominatim, Redis, Postgres) behind ports and
// starts the HTTP server. Redis and Postgres are optional.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "err", err)
		os.Exit(1)
	}

	obs.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var geocoder ports.Geocoder
	if cfg.GeocoderEnabled {
		g, err := geocode.NewNominatimGeocoder(geocode.NominatimOptions{
			BaseURL:     cfg.NominatimURL,
			UserAgent:   cfg.GeocoderUserAgent,
			RatePerSec:  cfg.GeocodeRatePerSec,
			MaxAttempts: cfg.GeocoderMaxAttempts,
			// Half the lookup timeout, leaving the rest for queueing on the
			// rate limiter. A hung upstream then fails on the client timeout,
			// which the breaker counts, instead of the caller's deadline.
			HTTPTimeout: cfg.GeocodeTimeout / 2,
		})
		if err != nil {
			return err
		}
		geocoder = g
	} else {
		slog.Warn("geocoder disabled; every stop will use its zone centroid")
	}

	optimizer := services.NewRouteOptimizer(geocoder, services.OptimizerConfig{
		GeocodeTimeout:     cfg.GeocodeTimeout,
		GeocodeBudget:      cfg.GeocodeBudget(),
		GeocodeConcurrency: cfg.GeocodeConcurrency,
		FallbackWarnRatio:  cfg.FallbackWarnRatio,
		MaxPerRoute:        cfg.MaxDeliveriesPerRoute,
	}, slog.Default())

	deps := api.Deps{
		Optimizer: optimizer,
		DefaultStart: domain.StartLocation{
			Coords:  domain.Coordinates{Lat: cfg.DefaultStartLatitude, Lon: cfg.DefaultStartLongitude},
			Address: cfg.DefaultStartAddress,
		},
		Checks: map[string]handlers.CheckFunc{},
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		client, err := db.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer closeRedis(client)

		deps.Store = cache.NewRedisRouteStore(client, cfg.RouteTTL)
		deps.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		slog.Info("route store enabled", "ttl", cfg.RouteTTL.String())
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
		if err != nil {
			return err
		}
		defer closeDB(conn)

		deps.Deliveries = repositories.NewPostgresDeliveryRepository(conn)
		deps.Checks["postgres"] = conn.PingContext
		slog.Info("delivery repository enabled")
	}

	// WriteTimeout does not cancel handlers, so the optimizer's geocoding
	// budget is derived from it; stops not geocoded in time use centroids
	// and the response still goes out.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func closeDB(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		slog.Warn("close database failed", "err", err)
	}
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		slog.Warn("close redis failed", "err", err)
	}
}
