package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"meetsum/internal/ai"
	"meetsum/internal/config"
	"meetsum/internal/logger"
	"meetsum/internal/pipeline"
	"meetsum/internal/storage"
	"meetsum/internal/stt"
	"meetsum/internal/watcher"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	// Unlike the server, the watcher has nothing useful to do without credentials
	if err := cfg.CredentialError(); err != nil {
		log.Error(ctx, "%v", err)
		os.Exit(1)
	}

	for _, dir := range []string{cfg.Watch.Input, cfg.Watch.Output} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error(ctx, "Failed to create directory %s: %v", dir, err)
			os.Exit(1)
		}
	}

	transcriber, err := stt.CreateProvider(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to create STT provider: %v", err)
		os.Exit(1)
	}
	summarizer, err := ai.CreateSummarizer(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to create summarizer: %v", err)
		os.Exit(1)
	}

	orchestrator := pipeline.New(storage.NewStager(cfg.UploadDir), transcriber, summarizer, log)
	handler := watcher.NewReportHandler(orchestrator, cfg.Watch.Output, cfg.Watch.Docx, log)

	w, err := watcher.New(cfg.Watch.Input, handler, log, cfg.Watch.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		os.Exit(1)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	log.Info(ctx, "Drop .mp3, .wav or .m4a files into %s; reports go to %s", cfg.Watch.Input, cfg.Watch.Output)

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
		cancel()
		<-done
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "Watcher error: %v", err)
		}
	}

	log.Info(ctx, "Watcher stopped")
}
