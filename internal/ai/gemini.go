package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meetsum/internal/logger"

	"google.golang.org/genai"
)

// GeminiSummarizer summarises transcripts with the Gemini API
type GeminiSummarizer struct {
	client *genai.Client
	opts   Options
	log    logger.Logger
}

// NewGeminiSummarizer creates the Gemini client once. baseURL is only set
// when talking to a proxy or a local stand-in.
func NewGeminiSummarizer(ctx context.Context, apiKey, baseURL string, opts Options, log logger.Logger) (*GeminiSummarizer, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiSummarizer{
		client: client,
		opts:   opts.withDefaults("gemini-2.5-flash"),
		log:    log,
	}, nil
}

func (s *GeminiSummarizer) Name() string {
	return "gemini"
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	startTime := time.Now()
	prompt := BuildSummaryPrompt(transcript, s.opts.BulletPoints)

	temperature := s.opts.Temperature
	gc := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(s.opts.MaxTokens),
	}

	s.log.Info(ctx, "[Summarizer] Calling Gemini model %s, transcript length: %d characters",
		s.opts.Model, len(transcript))

	result, err := s.client.Models.GenerateContent(ctx, s.opts.Model, genai.Text(prompt), gc)
	if err != nil {
		s.log.Error(ctx, "[Summarizer] Gemini API error: %v", err)
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", ErrEmptySummary)
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", fmt.Errorf("gemini returned blank content: %w", ErrEmptySummary)
	}

	s.log.Info(ctx, "[Summarizer] Summary received: length=%d, duration=%v", len(summary), time.Since(startTime))
	return summary, nil
}
