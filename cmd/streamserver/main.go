package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emran-niftyitsolution/streaming/internal/config"
	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/handlers"
	"github.com/emran-niftyitsolution/streaming/internal/metrics"
	"github.com/emran-niftyitsolution/streaming/internal/middleware"
	"github.com/emran-niftyitsolution/streaming/internal/uploads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("starting streaming server",
		"port", cfg.Port,
		"video_dir", cfg.VideoDir,
		"max_upload_size", cfg.MaxUploadSize,
		"max_chunk_size", cfg.MaxChunkSize,
	)

	// Initialize database
	db, err := database.Initialize(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("database initialized", "path", cfg.DBPath)

	// Create video directory if it doesn't exist
	if err := os.MkdirAll(cfg.VideoDir, 0755); err != nil {
		slog.Error("failed to create video directory", "error", err)
		os.Exit(1)
	}

	store, err := uploads.NewChunkStore(cfg.VideoDir)
	if err != nil {
		slog.Error("failed to initialize chunk store", "error", err)
		os.Exit(1)
	}

	finalizer := uploads.NewFinalizer(db, store, cfg.VideoDir)
	tracker := uploads.NewTracker()

	// Record start time for health checks
	startTime := time.Now()

	// Setup HTTP router
	mux := http.NewServeMux()
	mux.HandleFunc("/videos/stream/", handlers.StreamVideoHandler(db, cfg))
	mux.HandleFunc("/videos/upload-chunk", handlers.UploadChunkHandler(db, cfg, store, tracker))
	mux.HandleFunc("/videos/finalize-upload", handlers.FinalizeUploadHandler(db, cfg, finalizer, tracker))
	mux.HandleFunc("/videos/upload-status/", handlers.UploadStatusHandler(db, store))
	mux.HandleFunc("/videos", handlers.ListVideosHandler(db))
	mux.HandleFunc("/health", handlers.HealthHandler(db, cfg, startTime))
	mux.Handle("/metrics", promhttp.Handler())

	// Wrap with middleware (order: Recovery -> RequestID -> Logging -> Metrics -> handlers)
	handler := middleware.RecoveryMiddleware(
		middleware.RequestIDMiddleware(
			middleware.LoggingMiddleware(
				metrics.Middleware(mux),
			),
		),
	)

	// Setup HTTP server. Write timeout is generous: a single range response
	// can legitimately stream for minutes.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start the abandoned-session reaper
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper := uploads.NewReaper(db, store,
		time.Duration(cfg.SessionExpiryHours)*time.Hour,
		time.Duration(cfg.CleanupIntervalMinutes)*time.Minute,
	)
	go reaper.Run(ctx)

	// Start HTTP server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		slog.Info("shutdown signal received", "signal", sig)

		// Stop the reaper
		cancel()

		// Let in-flight chunk and finalize requests drain before cutting
		// connections; an interrupted finalize is recoverable but wasteful.
		tracker.Wait(30 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			if err := server.Close(); err != nil {
				slog.Error("server close failed", "error", err)
			}
			os.Exit(1)
		}

		slog.Info("server shutdown complete")
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
