package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pianokruemel/TymR/app/api"
	"github.com/Pianokruemel/TymR/app/cfg"
	"github.com/Pianokruemel/TymR/app/config"
	"github.com/Pianokruemel/TymR/app/database"
	"github.com/Pianokruemel/TymR/app/engine"
	"github.com/Pianokruemel/TymR/app/fetcher"
	"github.com/Pianokruemel/TymR/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting TymR server (version %s)...", appCfg.Version)

	// Database connection
	log.Printf("Opening database at %s...", appCfg.DBPath)
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %t)", version, dirty)

	// Initialize repositories
	sourceRepo := database.NewSourceRepository(db)
	cacheRepo := database.NewCacheRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	snapshotRepo := database.NewSnapshotRepository(db)

	// Register file-configured calendar sources
	log.Printf("Loading source configurations from %s...", appCfg.SourcesDir)
	loader := config.NewLoader(appCfg.SourcesDir)
	configs, err := loader.LoadAll()
	if err != nil {
		log.Fatal("Failed to load source configurations:", err)
	}

	registeredCount := 0
	for _, sc := range configs {
		if _, err := sourceRepo.UpsertSource(sc.Source.URL, sc.Source.Name, sc.IsActive()); err != nil {
			log.Printf("Warning: Failed to register source %s: %v", sc.Source.URL, err)
			continue
		}
		log.Printf("Registered source: %s (URL: %s, active: %t)", sc.Source.Name, sc.Source.URL, sc.IsActive())
		registeredCount++
	}
	log.Printf("Successfully registered %d/%d sources", registeredCount, len(configs))

	// Initialize core components
	calendarFetcher := fetcher.NewFetcher(appCfg.UserAgent, appCfg.GetFetchTimeout())
	publisher := engine.NewPublisher(snapshotRepo, settingsRepo)
	orchestrator := engine.NewOrchestrator(sourceRepo, cacheRepo, calendarFetcher,
		publisher, appCfg.GetStalenessThreshold())

	// Initialize and start the background scheduler
	log.Printf("Starting background scheduler (sync every %ds, display refresh every %ds)...",
		appCfg.SyncInterval, appCfg.DisplayRefreshInterval)
	scheduler := tasks.NewScheduler(orchestrator,
		time.Duration(appCfg.SyncInterval)*time.Second,
		time.Duration(appCfg.DisplayRefreshInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(sourceRepo, cacheRepo, settingsRepo, snapshotRepo, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Current event: http://localhost:%s/current", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)

		if appCfg.APIAccessKey != "" {
			log.Printf("  Sources:       http://localhost:%s/api/sources (requires API key)", appCfg.Port)
			log.Printf("  Refresh:       http://localhost:%s/api/refresh (POST, requires API key)", appCfg.Port)
			log.Printf("  Settings:      http://localhost:%s/api/settings (requires API key)", appCfg.Port)
		} else {
			log.Printf("  API endpoints: DISABLED (API_ACCESS_KEY not set)")
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("TymR server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("TymR server shutdown complete")
}
