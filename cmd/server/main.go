package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetsum/internal/ai"
	"meetsum/internal/api"
	"meetsum/internal/config"
	"meetsum/internal/logger"
	"meetsum/internal/pipeline"
	"meetsum/internal/storage"
	"meetsum/internal/stt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// Load .env file if it exists (ignore error if file doesn't exist)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Error(ctx, "Failed to load configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if envErr != nil {
		log.Info(ctx, "No .env file found, using environment variables")
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	runs := storage.NewRunStore(cfg.MaxRuns)

	// A missing credential leaves the server up with a banner instead of exiting
	var orchestrator api.Submitter
	configErr := cfg.CredentialError()
	if configErr == nil {
		p, err := buildPipeline(ctx, cfg, runs, log)
		if err != nil {
			configErr = err
		} else {
			orchestrator = p
		}
	}
	if configErr != nil {
		log.Warn(ctx, "Summaries disabled: %v", configErr)
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes() + 1<<20
	r.Use(corsMiddleware())

	handler := api.NewHandler(cfg, orchestrator, runs, log, configErr)
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info(ctx, "Meeting summariser running on :%s (stt: %s, summary: %s)",
			cfg.Port, cfg.STTProvider, cfg.SummaryProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "Server shutdown error: %v", err)
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, runs *storage.RunStore, log logger.Logger) (*pipeline.Orchestrator, error) {
	transcriber, err := stt.CreateProvider(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	summarizer, err := ai.CreateSummarizer(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return pipeline.New(
		storage.NewStager(cfg.UploadDir),
		transcriber,
		summarizer,
		log,
		pipeline.WithStatusHook(runs.UpdateStatus),
	), nil
}

// corsMiddleware adds CORS headers for browser clients on other origins
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
