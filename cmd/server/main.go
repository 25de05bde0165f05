package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unalkalkan/Prompter/internal/api"
	"github.com/unalkalkan/Prompter/internal/config"
	"github.com/unalkalkan/Prompter/internal/deck"
	"github.com/unalkalkan/Prompter/internal/health"
	"github.com/unalkalkan/Prompter/internal/logging"
	"github.com/unalkalkan/Prompter/internal/parser"
	"github.com/unalkalkan/Prompter/internal/pipeline"
	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/internal/storage"
	"github.com/unalkalkan/Prompter/pkg/types"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "config/dev.example.yaml", "Path to configuration file (.yaml or .toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "prompter-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting prompter server", "version", version, "config", configPath)

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage adapter: %w", err)
	}
	defer storageAdapter.Close()
	logger.Info("storage adapter initialized", "adapter", cfg.Storage.Adapter)

	scriptParser, err := parser.NewFactory().GetParser("txt")
	if err != nil {
		return err
	}

	deckRepo := deck.NewRepository(storageAdapter)
	builder := pipeline.NewBuilder(scriptParser, logger)
	deckHandler := api.NewDeckHandler(deckRepo, builder, api.Options{
		Title:          cfg.Render.Title,
		Preset:         cfg.Segmentation.Preset,
		Thresholds:     cfg.Segmentation.Thresholds,
		Format:         cfg.Render.Format,
		MaxScriptBytes: int64(cfg.Server.MaxScriptKB) << 10,
	}, logger)

	checker := health.NewChecker(version)
	checker.Register("storage", health.StorageProbe(storageAdapter))

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", checker.Live())
	mux.HandleFunc("/health/ready", checker.Ready())
	mux.HandleFunc("/health", checker.Full())
	mux.HandleFunc("/api/v1/info", infoHandler(version, cfg))
	deckHandler.Register(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// infoHandler returns basic server information
func infoHandler(version string, cfg *types.Config) http.HandlerFunc {
	info := map[string]any{
		"version":         version,
		"storage_adapter": cfg.Storage.Adapter,
		"preset":          cfg.Segmentation.Preset,
		"thresholds":      cfg.Segmentation.Thresholds,
		"presets":         segmentation.PresetNames(),
		"formats":         render.Formats(),
		"default_format":  cfg.Render.Format,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}
}
