package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rssforge/rssforge/app/api"
	"github.com/rssforge/rssforge/app/cfg"
	"github.com/rssforge/rssforge/app/database"
	"github.com/rssforge/rssforge/app/feed"
	"github.com/rssforge/rssforge/app/fetch"
	"github.com/rssforge/rssforge/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting RSS Forge server...", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.ConfigsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.ConfigsDir)

	fingerprintRepo := database.NewFingerprintRepository(db)

	// Core components
	fetcher := fetch.NewClient(appCfg.UserAgent, 30*time.Second)
	extractor := feed.NewExtractor()
	pipeline := feed.NewPipeline(
		feed.NewFullTextEnricher(fetcher),
		feed.NewFilterer(),
		feed.NoopTranslator{},
	)
	processor := feed.NewProcessor(fetcher, extractor, pipeline, feed.NewGenerator())
	aggregator := feed.NewAggregator(processor)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, processor, fingerprintRepo, tasks.LogNotifier{})
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, processor, aggregator, fingerprintRepo)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("RSS Forge server started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("RSS Forge server shutdown complete")
}
