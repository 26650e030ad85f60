package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roadsense/telemetry/internal/api"
	"github.com/roadsense/telemetry/internal/archive"
	"github.com/roadsense/telemetry/internal/config"
	"github.com/roadsense/telemetry/internal/connection"
	"github.com/roadsense/telemetry/internal/database"
	"github.com/roadsense/telemetry/internal/dispatch"
	"github.com/roadsense/telemetry/internal/state"
	"github.com/roadsense/telemetry/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/monitor.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting monitor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.BaseURL,
		"stream_url", cfg.Stream.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Reconciled state store
	store := state.New(
		state.WithLiveCapacity(cfg.State.LiveCapacity),
		state.WithAlertCapacity(cfg.State.AlertCapacity),
	)

	// Optional telemetry archive
	var writer *archive.Writer
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive database",
			"host", cfg.Archive.Database.Host,
			"port", cfg.Archive.Database.Port,
			"database", cfg.Archive.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Archive.Database)
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		writer = archive.NewWriter(archive.WriterConfig{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			BufferSize:    cfg.Archive.BufferSize,
		}, pool, logger)

		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start archive writer", "error", err)
			os.Exit(1)
		}
		logger.Info("archive writer started")
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.AuthToken,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Seed state from the REST API so the store is populated before the
	// first stream frame arrives.
	if err := seedState(ctx, apiClient, store, logger); err != nil {
		logger.Warn("initial state seed incomplete", "error", err)
	}

	// Frame dispatcher; the archive writer receives live records as a sink
	var sink dispatch.Sink
	if writer != nil {
		sink = writer
	}
	dispatcher := dispatch.New(store, sink, logger)

	// Stream manager
	manager := connection.NewManager(connection.ManagerConfig{
		URL:                cfg.Stream.URL,
		PingInterval:       cfg.Stream.PingInterval,
		PingTimeout:        cfg.Stream.PingTimeout,
		WriteTimeout:       cfg.Stream.WriteTimeout,
		BufferSize:         cfg.Stream.BufferSize,
		ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
	}, dispatcher, logger)

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(store, manager, dispatcher, logger),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Connect the stream
	manager.Connect()

	logger.Info("monitor running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	manager.Disconnect()
	if writer != nil {
		if err := writer.Stop(shutdownCtx); err != nil {
			logger.Warn("archive writer stop", "error", err)
		}
	}
	healthServer.Shutdown(shutdownCtx)

	logger.Info("monitor stopped")
}

// seedState fetches the vehicle roster, current telemetry and weather over
// REST in parallel and applies the collections to the store.
func seedState(ctx context.Context, client *api.Client, store *state.Store, logger *slog.Logger) error {
	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(seedCtx)

	g.Go(func() error {
		vehicles, err := client.GetVehicles(gctx)
		if err != nil {
			return fmt.Errorf("fetch vehicle roster: %w", err)
		}
		store.SetVehicles(vehicles)
		logger.Info("vehicle roster loaded", "vehicles", len(vehicles))
		return nil
	})

	g.Go(func() error {
		records, err := client.GetCurrentTelemetry(gctx)
		if err != nil {
			return fmt.Errorf("fetch current telemetry: %w", err)
		}
		store.ReplaceHistorical(records)
		logger.Info("seeded historical telemetry", "records", len(records))
		return nil
	})

	g.Go(func() error {
		weather, err := client.GetCurrentWeather(gctx)
		if err != nil {
			return fmt.Errorf("fetch current weather: %w", err)
		}
		store.SetWeather(weather)
		logger.Info("seeded weather snapshot")
		return nil
	})

	return g.Wait()
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(store *state.Store, manager *connection.Manager, dispatcher *dispatch.Dispatcher, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := manager.Status()
		stats := store.Stats()
		frames := dispatcher.Stats()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		health.Components["stream"] = map[string]interface{}{
			"state":      string(status.State),
			"last_error": status.LastError,
		}
		if status.State != connection.StatusConnected {
			health.Status = "degraded"
		}

		health.Components["state"] = map[string]interface{}{
			"vehicles":    stats.VehicleCount,
			"live":        stats.LiveCount,
			"historical":  stats.HistoricalCount,
			"alerts":      stats.AlertCount,
			"has_weather": stats.HasWeather,
			"last_update": stats.LastUpdate,
		}

		health.Components["dispatch"] = map[string]interface{}{
			"frames_received": frames.FramesReceived,
			"frames_applied":  frames.FramesApplied,
			"decode_errors":   frames.DecodeErrors,
			"unknown_kinds":   frames.UnknownKinds,
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/live", func(w http.ResponseWriter, r *http.Request) {
		live := store.Live()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":   len(live),
			"records": live,
		})
	})

	return mux
}
