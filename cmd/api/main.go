// Package main is the entry point for the vacation gallery API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pkordes/vacation-gallery/internal/config"
	"github.com/pkordes/vacation-gallery/internal/geocode"
	"github.com/pkordes/vacation-gallery/internal/handler"
	"github.com/pkordes/vacation-gallery/internal/middleware"
	"github.com/pkordes/vacation-gallery/internal/ors"
	"github.com/pkordes/vacation-gallery/internal/repo"
	"github.com/pkordes/vacation-gallery/internal/service"
	"github.com/pkordes/vacation-gallery/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- External clients -------------------------------------------------
	geocoder := geocode.New(geocode.Config{
		BaseURL:         cfg.Geocoder.BaseURL,
		UserAgent:       cfg.Geocoder.UserAgent,
		MinInterval:     cfg.Geocoder.MinInterval,
		MaxRetries:      cfg.Geocoder.MaxRetries,
		RetryBase:       cfg.Geocoder.RetryBase,
		CacheSize:       cfg.Geocoder.CacheSize,
		LandmarkClasses: cfg.Geocoder.LandmarkClasses,
	}, logger, geocode.WithStore(repo.NewGeocacheRepo(pool)))

	router := ors.New(ors.Config{
		BaseURL:      cfg.ORS.BaseURL,
		APIKey:       cfg.ORS.APIKey,
		RequestDelay: cfg.ORS.RequestDelay,
	}, logger)
	if !router.Configured() {
		slog.Warn("ORS_API_KEY is not set; route generation and planning will answer 503")
	}

	// --- Services ---------------------------------------------------------
	trips := repo.NewTripRepo(pool)
	photos := repo.NewPhotoRepo(pool)
	tags := repo.NewTagRepo(pool)
	routes := repo.NewRouteRepo(pool)

	srvDeps := handler.Services{
		Trips:    service.NewTripService(trips),
		Photos:   service.NewPhotoService(trips, photos, geocoder, logger),
		Tags:     service.NewTagService(tags, photos),
		Routes:   service.NewRouteService(trips, routes, router, geocoder, logger),
		Export:   service.NewExportService(trips, photos, tags),
		Geocoder: geocoder,
	}

	// --- Router -----------------------------------------------------------
	// RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", handler.NewServer(srvDeps, logger).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Route building makes one upstream call per uncached leg, so writes get
	// more room than the read timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newLogger writes JSON to stdout and, when LOG_FILE is set, to a rotating file.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "source", res.Source.Path, "duration", res.Duration)
	}
	return nil
}
