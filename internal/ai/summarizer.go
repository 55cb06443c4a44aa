package ai

import (
	"context"
	"errors"
	"fmt"

	"meetsum/internal/config"
	"meetsum/internal/logger"
)

// ErrEmptySummary is returned when the model answers with no choices or no text
var ErrEmptySummary = errors.New("empty summary")

// Summarizer turns a transcript into a short bullet summary
type Summarizer interface {
	// Summarize makes a single attempt; the result is not validated beyond non-emptiness
	Summarize(ctx context.Context, transcript string) (string, error)
	Name() string
}

// CreateSummarizer builds the summariser selected by cfg.SummaryProvider
func CreateSummarizer(ctx context.Context, cfg *config.Config, log logger.Logger) (Summarizer, error) {
	opts := Options{
		Temperature:  cfg.Summary.Temperature,
		MaxTokens:    cfg.Summary.MaxTokens,
		BulletPoints: cfg.Summary.BulletPoints,
	}

	switch cfg.SummaryProvider {
	case "", "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", config.ErrMissingCredential)
		}
		opts.Model = cfg.OpenAI.ChatModel
		log.Info(ctx, "[Summarizer] Using OpenAI chat model: %s", opts.Model)
		return NewOpenAISummarizer(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, opts, log), nil

	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY", config.ErrMissingCredential)
		}
		opts.Model = cfg.Gemini.Model
		log.Info(ctx, "[Summarizer] Using Gemini model: %s", opts.Model)
		return NewGeminiSummarizer(ctx, cfg.Gemini.APIKey, "", opts, log)

	default:
		return nil, fmt.Errorf("unsupported summary provider: %s. Supported: openai, gemini", cfg.SummaryProvider)
	}
}
