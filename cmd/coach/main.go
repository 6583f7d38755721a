package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Djalilu/interview-app/internal/api"
	"github.com/Djalilu/interview-app/internal/config"
	"github.com/Djalilu/interview-app/internal/genai"
	"github.com/Djalilu/interview-app/internal/interview"
	"github.com/Djalilu/interview-app/internal/server"
	"github.com/Djalilu/interview-app/internal/storage"
	"github.com/Djalilu/interview-app/internal/storage/memory"
	"github.com/Djalilu/interview-app/internal/storage/sqlite"
	"github.com/Djalilu/interview-app/internal/telemetry"
	"github.com/Djalilu/interview-app/internal/tokens"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("interview-coach", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	var store storage.SessionStore
	if cfg.Storage.Path != "" {
		sqlStore, err := sqlite.New(cfg.Storage.Path, logger)
		if err != nil {
			log.Fatalf("Failed to open session store: %v", err)
		}
		defer sqlStore.Close()
		store = sqlStore
	} else {
		logger.Warn("no storage path configured, history will not survive restarts")
		store = memory.New()
	}

	estimator, err := tokens.NewEstimator()
	if err != nil {
		logger.Warn("token estimator unavailable", slog.String("error", err.Error()))
	}

	clientOpts := []genai.ClientOption{genai.WithModel(cfg.Gemini.Model)}
	if cfg.Gemini.BaseURL != "" {
		clientOpts = append(clientOpts, genai.WithBaseURL(cfg.Gemini.BaseURL))
	}
	model := interview.Gemini{Client: genai.NewClient(cfg.Gemini.APIKey, clientOpts...)}

	registry := interview.NewRegistry()
	handler := api.NewHandler(registry, model, store, estimator, logger)

	srv := server.New(cfg.Server.Port, logger)
	handler.Routes(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-sigCh:
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}
}
