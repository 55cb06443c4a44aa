package stt

import (
	"context"
	"fmt"

	"meetsum/internal/config"
	"meetsum/internal/logger"
)

// CreateProvider creates the STT provider selected by cfg.STTProvider.
// Credentials are checked here so a misconfigured provider is never built.
func CreateProvider(ctx context.Context, cfg *config.Config, log logger.Logger) (Provider, error) {
	switch cfg.STTProvider {
	case "", "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", config.ErrMissingCredential)
		}
		log.Info(ctx, "[STT Factory] Creating OpenAI STT provider, model: %s", cfg.OpenAI.TranscriptionModel)
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.TranscriptionModel, log), nil

	case "fpt":
		if cfg.FPT.APIKey == "" {
			return nil, fmt.Errorf("%w: FPT_AI_API_KEY", config.ErrMissingCredential)
		}
		log.Info(ctx, "[STT Factory] Creating FPT STT provider")
		return NewFPTProvider(cfg.FPT.APIKey, cfg.FPT.URL, log), nil

	case "google":
		keyData := cfg.Google.KeyFile
		if keyData == "" {
			return nil, fmt.Errorf("%w: GOOGLE_STT_KEY_FILE", config.ErrMissingCredential)
		}
		if !IsGoogleAPIKey(keyData) && cfg.Google.ProjectID == "" {
			return nil, fmt.Errorf("GOOGLE_STT_PROJECT_ID is required when using a service account")
		}
		log.Info(ctx, "[STT Factory] Creating Google STT provider, language: %s", cfg.Google.Language)
		return NewGoogleProvider(ctx, cfg.Google.ProjectID, keyData, cfg.Google.Language, log)

	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: openai, fpt, google", cfg.STTProvider)
	}
}
