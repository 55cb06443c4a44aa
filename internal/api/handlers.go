package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"meetsum/internal/config"
	"meetsum/internal/logger"
	"meetsum/internal/model"
	"meetsum/internal/storage"
	"meetsum/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

var allowedExts = []string{".mp3", ".wav", ".m4a"}

// Submitter runs one uploaded file through the pipeline
type Submitter interface {
	Submit(ctx context.Context, data []byte, fileName string) *model.Run
}

// Handler serves the upload page and the JSON API
type Handler struct {
	cfg       *config.Config
	pipeline  Submitter
	runs      *storage.RunStore
	log       logger.Logger
	configErr error
}

// NewHandler wires the HTTP layer. configErr is non-nil when a provider
// credential is missing; the server keeps running and reports it.
func NewHandler(cfg *config.Config, pipeline Submitter, runs *storage.RunStore, log logger.Logger, configErr error) *Handler {
	return &Handler{
		cfg:       cfg,
		pipeline:  pipeline,
		runs:      runs,
		log:       log,
		configErr: configErr,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", h.showPage)
	r.POST("/", h.submitPage)
	r.GET("/health", h.healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/summaries", h.createSummary)
		v1.GET("/runs/:run_id", h.getRun)
		v1.GET("/runs/:run_id/status", h.getRunStatus)
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	data := gin.H{
		"status":           "ok",
		"service":          "meetsum",
		"stt_provider":     h.cfg.STTProvider,
		"summary_provider": h.cfg.SummaryProvider,
	}
	if h.configErr != nil {
		data["status"] = "degraded"
		data["config_error"] = configBanner(h.cfg, h.configErr)
	}
	utils.Success(c, data)
}

// createSummary accepts a multipart upload and runs it to completion
func (h *Handler) createSummary(c *gin.Context) {
	if h.configErr != nil {
		utils.Error(c, http.StatusServiceUnavailable, configBanner(h.cfg, h.configErr))
		return
	}

	file, err := formAudioFile(c)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "audio_file is required. Error: "+err.Error())
		return
	}

	data, err := h.readUpload(file)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	run := h.submit(c.Request.Context(), data, file.Filename)

	if run.Succeeded() {
		utils.Success(c, gin.H{"run": run})
		return
	}
	utils.Fail(c, httpStatusFor(run), failureMessage(run), gin.H{"run": run})
}

// getRun returns a recent run
func (h *Handler) getRun(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}
	utils.Success(c, gin.H{"run": run})
}

// getRunStatus returns only the state of a run
func (h *Handler) getRunStatus(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}

	message := ""
	if n := len(run.History); n > 0 {
		message = run.History[n-1].Message
	}
	utils.Success(c, gin.H{
		"run_id":  run.ID,
		"state":   run.State,
		"message": message,
		"history": run.History,
	})
}

func (h *Handler) lookupRun(c *gin.Context) (*model.Run, bool) {
	id := c.Param("run_id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "run_id is required")
		return nil, false
	}

	run, err := h.runs.Get(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		utils.Error(c, http.StatusNotFound, "run not found")
		return nil, false
	}
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return run, true
}

func (h *Handler) submit(ctx context.Context, data []byte, fileName string) *model.Run {
	run := h.pipeline.Submit(ctx, data, fileName)
	h.runs.Save(run)

	ctx = logger.WithRunID(ctx, run.ID)
	if run.Failure != nil {
		h.log.Warn(ctx, "[API] Run finished in state %s: %v", run.State, run.Failure)
	} else {
		h.log.Info(ctx, "[API] Run finished in state %s", run.State)
	}
	return run
}

// readUpload validates extension and size, then loads the file into memory
func (h *Handler) readUpload(file *multipart.FileHeader) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !lo.Contains(allowedExts, ext) {
		return nil, fmt.Errorf("unsupported audio format. Supported: mp3, wav, m4a")
	}

	limit := h.cfg.MaxUploadBytes()
	if file.Size > limit {
		return nil, fmt.Errorf("file size exceeds %dMB limit", h.cfg.MaxUploadMB)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file size exceeds %dMB limit", h.cfg.MaxUploadMB)
	}
	return data, nil
}

// formAudioFile looks up the upload under the accepted field names
func formAudioFile(c *gin.Context) (*multipart.FileHeader, error) {
	var err error
	for _, field := range []string{"audio_file", "audio", "file"} {
		var file *multipart.FileHeader
		if file, err = c.FormFile(field); err == nil {
			return file, nil
		}
	}
	return nil, err
}

// httpStatusFor maps a finished run to a response code
func httpStatusFor(run *model.Run) int {
	if run.Succeeded() {
		return http.StatusOK
	}
	if run.Failure == nil {
		return http.StatusInternalServerError
	}
	switch run.Failure.Kind {
	case model.KindStaging:
		if errors.Is(run.Failure, storage.ErrEmptyUpload) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	case model.KindTranscription, model.KindSummarization:
		return http.StatusBadGateway
	case model.KindConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func failureMessage(run *model.Run) string {
	if run.Failure == nil {
		return "processing did not complete"
	}
	return run.Failure.Message
}

// configBanner is the text shown while a credential is missing
func configBanner(cfg *config.Config, err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, config.ErrMissingCredential) && cfg.OpenAI.APIKey == "" &&
		(cfg.STTProvider == "openai" || cfg.SummaryProvider == "openai") {
		return "OpenAI API key not found. Please set your OPENAI_API_KEY environment variable."
	}
	return "Configuration error: " + err.Error()
}
