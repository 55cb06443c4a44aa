package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "LOG_LEVEL", "UPLOAD_DIR", "MAX_UPLOAD_MB", "MAX_RUNS",
	"STT_PROVIDER", "SUMMARY_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	"OPENAI_TRANSCRIPTION_MODEL", "OPENAI_CHAT_MODEL", "SUMMARY_TEMPERATURE",
	"SUMMARY_MAX_TOKENS", "SUMMARY_BULLETS", "FPT_AI_API_KEY", "FPT_AI_STT_URL",
	"GOOGLE_STT_PROJECT_ID", "GOOGLE_STT_KEY_FILE", "GOOGLE_STT_LANGUAGE",
	"GEMINI_API_KEY", "GEMINI_MODEL", "WATCH_INPUT", "WATCH_OUTPUT", "WATCH_MAX_CONCURRENT", "WATCH_DOCX",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.OpenAI.TranscriptionModel != "whisper-1" {
		t.Errorf("TranscriptionModel = %q", cfg.OpenAI.TranscriptionModel)
	}
	if cfg.OpenAI.ChatModel != "gpt-4-turbo-preview" {
		t.Errorf("ChatModel = %q", cfg.OpenAI.ChatModel)
	}
	if cfg.Summary.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Summary.Temperature)
	}
	if cfg.Summary.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.Summary.MaxTokens)
	}
	if cfg.Summary.BulletPoints != 5 {
		t.Errorf("BulletPoints = %d, want 5", cfg.Summary.BulletPoints)
	}
	if cfg.MaxUploadBytes() != 25<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}
}

func TestLoadMissingKeyIsNotFatal(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	credErr := cfg.CredentialError()
	if !errors.Is(credErr, ErrMissingCredential) {
		t.Fatalf("CredentialError() = %v, want ErrMissingCredential", credErr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SUMMARY_TEMPERATURE", "0.2")
	t.Setenv("SUMMARY_BULLETS", "3")
	t.Setenv("STT_PROVIDER", "FPT")
	t.Setenv("FPT_AI_API_KEY", "fpt-key")
	t.Setenv("WATCH_DOCX", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.Summary.Temperature != float32(0.2) {
		t.Errorf("Temperature = %v, want 0.2", cfg.Summary.Temperature)
	}
	if cfg.Summary.BulletPoints != 3 {
		t.Errorf("BulletPoints = %d, want 3", cfg.Summary.BulletPoints)
	}
	if cfg.STTProvider != "fpt" {
		t.Errorf("STTProvider = %q, want fpt", cfg.STTProvider)
	}
	if !cfg.Watch.Docx {
		t.Error("Watch.Docx = false, want true")
	}
	if err := cfg.CredentialError(); err != nil {
		t.Errorf("CredentialError() = %v, want nil", err)
	}
}

func TestLoadInvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUMMARY_MAX_TOKENS", "many")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on non-numeric SUMMARY_MAX_TOKENS")
	}

	t.Setenv("SUMMARY_MAX_TOKENS", "")
	t.Setenv("WATCH_DOCX", "sometimes")
	if _, err := Load(); err == nil {
		t.Error("Load() should fail on non-boolean WATCH_DOCX")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "7070"
stt_provider: google
summary_provider: gemini
openai:
  chat_model: "gpt-4o-mini"
summary:
  temperature: 0.5
  max_tokens: 300
  bullet_points: 5
google:
  project_id: "proj"
gemini:
  model: "gemini-2.0-flash"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7171")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Port != "7171" {
		t.Errorf("Port = %q, env should win over file", cfg.Port)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %q", cfg.OpenAI.ChatModel)
	}
	if cfg.Summary.MaxTokens != 300 {
		t.Errorf("MaxTokens = %d, want 300", cfg.Summary.MaxTokens)
	}
	if cfg.OpenAI.TranscriptionModel != "whisper-1" {
		t.Errorf("TranscriptionModel default lost: %q", cfg.OpenAI.TranscriptionModel)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}

	credErr := cfg.CredentialError()
	if credErr == nil {
		t.Fatal("expected credential error for google + gemini")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFile("nonexistent.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown stt provider", func(c *Config) { c.STTProvider = "whisperx" }, true},
		{"unknown summary provider", func(c *Config) { c.SummaryProvider = "claude" }, true},
		{"temperature too high", func(c *Config) { c.Summary.Temperature = 2.5 }, true},
		{"zero max tokens", func(c *Config) { c.Summary.MaxTokens = 0 }, true},
		{"zero bullets", func(c *Config) { c.Summary.BulletPoints = 0 }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"zero upload size falls back", func(c *Config) { c.MaxUploadMB = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
