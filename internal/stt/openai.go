package stt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"meetsum/internal/logger"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements STT using the OpenAI audio transcription endpoint
type OpenAIProvider struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOpenAIProvider creates a transcription client. An empty baseURL keeps
// the public OpenAI endpoint; an empty model falls back to whisper-1.
func NewOpenAIProvider(apiKey, baseURL, model string, log logger.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe uploads the staged file and requests a plain-text transcript
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	startTime := time.Now()
	p.log.Info(ctx, "[OpenAI STT] Processing audio file: %s, model: %s, extension: %s",
		audioPath, p.model, filepath.Ext(audioPath))

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		p.log.Error(ctx, "[OpenAI STT] API error: %v", err)
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		p.log.Warn(ctx, "[OpenAI STT] Empty transcript returned")
		return &Result{Provider: p.Name(), RawResponse: resp.Text}, fmt.Errorf("openai transcription: %w", ErrEmptyTranscript)
	}

	p.log.Info(ctx, "[OpenAI STT] Transcription successful: length=%d, duration=%v",
		len(transcript), time.Since(startTime))

	return &Result{
		Transcript:  transcript,
		Provider:    p.Name(),
		RawResponse: resp.Text,
	}, nil
}
