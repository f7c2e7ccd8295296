// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transcription-service/internal/config"
	"transcription-service/internal/domain/ports/adapter"
	engineAdapters "transcription-service/internal/infra/adapters/engine"
	"transcription-service/internal/infra/logging"
	"transcription-service/internal/infra/metrics"
	"transcription-service/internal/infra/registry"
	"transcription-service/internal/infra/sched"
	"transcription-service/internal/infra/storage"
	"transcription-service/internal/infra/web"
	"transcription-service/internal/infra/worker"
	"transcription-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, static engine)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Storage ----
	store, err := storage.NewArea(cfg.Storage.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage")
	}

	// ---- Engine adapter ----
	var eng adapter.TranscriptionEngine
	if cfg.Engine.APIKey != "" && !cfg.Runtime.Dev {
		eng, err = engineAdapters.NewOpenAIEngine(cfg.Engine)
		if err != nil {
			logger.Fatal().Err(err).Msg("engine adapter")
		}
		logger.Info().Str("model", cfg.Engine.Model).Msg("engine: openai transcription")
	} else {
		eng = engineAdapters.NewNoopEngine()
		logger.Warn().Msg("engine: static noop adapter (no api key or dev mode)")
	}

	// ---- Registry, pool, executor ----
	jobs := registry.NewMemory()
	pool := worker.NewPool(cfg.Jobs.Workers, cfg.Jobs.QueueDepth, logger)
	pool.Start(ctx)
	exec := worker.NewExecutor(jobs, store, eng, logger)
	retention := sched.NewRetention(logger)

	// ---- Use cases ----
	jobUC := usecase.NewJobUC(jobs, store, exec, pool, retention, cfg.Jobs.Retention, logger)
	transcribeUC := usecase.NewTranscribeUC(store, exec, pool, cfg.Jobs.SyncDeadline, logger)

	// ---- HTTP ----
	handler := web.NewHandler(transcribeUC, jobUC, cfg.Engine.DefaultLanguage, cfg.Server.MaxBodyBytes, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: web.Routes(handler, logger),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	retention.Stop()
	cancel()
	pool.Stop()
}
