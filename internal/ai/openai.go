package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meetsum/internal/logger"

	"github.com/sashabaranov/go-openai"
)

// OpenAISummarizer summarises transcripts with the chat completions API
type OpenAISummarizer struct {
	client *openai.Client
	opts   Options
	log    logger.Logger
}

// NewOpenAISummarizer creates a chat-completion summariser. The model
// defaults to gpt-4-turbo-preview.
func NewOpenAISummarizer(apiKey, baseURL string, opts Options, log logger.Logger) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts.withDefaults(openai.GPT4TurboPreview),
		log:    log,
	}
}

func (s *OpenAISummarizer) Name() string {
	return "openai"
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	startTime := time.Now()
	prompt := BuildSummaryPrompt(transcript, s.opts.BulletPoints)

	s.log.Info(ctx, "[Summarizer] Calling OpenAI model %s, transcript length: %d characters",
		s.opts.Model, len(transcript))

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	if err != nil {
		s.log.Error(ctx, "[Summarizer] OpenAI API error: %v", err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	s.log.Debug(ctx, "[Summarizer] Usage - Prompt tokens: %d, Completion tokens: %d, Total tokens: %d",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices: %w", ErrEmptySummary)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("OpenAI returned blank content: %w", ErrEmptySummary)
	}

	s.log.Info(ctx, "[Summarizer] Summary received: length=%d, duration=%v", len(summary), time.Since(startTime))
	return summary, nil
}
