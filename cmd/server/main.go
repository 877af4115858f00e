package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yegors/airtraffic/internal/api"
	"github.com/yegors/airtraffic/internal/config"
	"github.com/yegors/airtraffic/internal/simulation"
	"github.com/yegors/airtraffic/internal/storage/sqlite"
	"github.com/yegors/airtraffic/internal/websocket"
	"github.com/yegors/airtraffic/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - falls back to $AIRTRAFFIC_CONFIG, configs/ and the working directory)")
	flag.Parse()

	// A missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting air traffic simulation server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsServer := websocket.NewServer(log)
	go wsServer.Run(ctx)

	opts := []simulation.Option{simulation.WithBroadcaster(wsServer)}

	var episodes api.EpisodeStore
	if cfg.Storage.Enabled {
		if err := os.MkdirAll(cfg.Storage.SQLiteBasePath, 0755); err != nil {
			log.Error("Failed to create database directory", logger.Error(err), logger.String("path", cfg.Storage.SQLiteBasePath))
			os.Exit(1)
		}

		dbPath := sqlite.DailyPath(cfg.Storage.SQLiteBasePath, time.Now())
		storage, err := sqlite.NewEpisodeStorage(dbPath, cfg.Storage.RecordTicks, log)
		if err != nil {
			log.Error("Failed to create SQLite storage", logger.Error(err))
			os.Exit(1)
		}
		defer storage.Close()

		episodes = storage
		opts = append(opts, simulation.WithRecorder(storage))
		log.Info("Recording episodes", logger.String("path", dbPath))
	} else {
		log.Info("Episode recording disabled in configuration")
	}

	simulationService, err := simulation.NewService(cfg.ToWorldConfig(), log, opts...)
	if err != nil {
		log.Error("Failed to create simulation service", logger.Error(err))
		os.Exit(1)
	}

	router := api.NewRouter(simulationService, episodes, cfg, wsServer, log, Version)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", logger.String("addr", server.Addr), logger.Error(err))
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	// Close the running episode before storage goes away
	simulationService.Close()
	cancel()

	log.Info("Server fully stopped")
}
