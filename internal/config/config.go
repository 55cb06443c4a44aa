package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is wrapped by CredentialError when a provider key is absent
var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	Port            string        `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	UploadDir       string        `yaml:"upload_dir"`
	MaxUploadMB     int           `yaml:"max_upload_mb"`
	MaxRuns         int           `yaml:"max_runs"`
	STTProvider     string        `yaml:"stt_provider"`
	SummaryProvider string        `yaml:"summary_provider"`
	OpenAI          OpenAIConfig  `yaml:"openai"`
	Summary         SummaryConfig `yaml:"summary"`
	FPT             FPTConfig     `yaml:"fpt"`
	Google          GoogleConfig  `yaml:"google"`
	Gemini          GeminiConfig  `yaml:"gemini"`
	Watch           WatchConfig   `yaml:"watch"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"-"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
}

type SummaryConfig struct {
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	BulletPoints int     `yaml:"bullet_points"`
}

type FPTConfig struct {
	APIKey string `yaml:"-"`
	URL    string `yaml:"url"`
}

type GoogleConfig struct {
	ProjectID string `yaml:"project_id"`
	KeyFile   string `yaml:"-"`
	Language  string `yaml:"language"`
}

type GeminiConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
}

type WatchConfig struct {
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	Docx          bool   `yaml:"docx"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		MaxUploadMB:     25,
		MaxRuns:         100,
		STTProvider:     "openai",
		SummaryProvider: "openai",
		OpenAI: OpenAIConfig{
			TranscriptionModel: "whisper-1",
			ChatModel:          "gpt-4-turbo-preview",
		},
		Summary: SummaryConfig{
			Temperature:  0.7,
			MaxTokens:    500,
			BulletPoints: 5,
		},
		FPT: FPTConfig{
			URL: "https://api.fpt.ai/hmi/asr/v1",
		},
		Google: GoogleConfig{
			Language: "en-US",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Watch: WatchConfig{
			Input:         "data/inbox",
			Output:        "data/summaries",
			MaxConcurrent: 2,
		},
	}
}

// Load builds configuration from defaults, the optional YAML file named by
// CONFIG_FILE, then environment variables. A missing API key is not an error
// here; see CredentialError.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.STTProvider = strings.ToLower(getEnv("STT_PROVIDER", c.STTProvider))
	c.SummaryProvider = strings.ToLower(getEnv("SUMMARY_PROVIDER", c.SummaryProvider))

	c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.TranscriptionModel = getEnv("OPENAI_TRANSCRIPTION_MODEL", c.OpenAI.TranscriptionModel)
	c.OpenAI.ChatModel = getEnv("OPENAI_CHAT_MODEL", c.OpenAI.ChatModel)

	c.FPT.APIKey = os.Getenv("FPT_AI_API_KEY")
	c.FPT.URL = getEnv("FPT_AI_STT_URL", c.FPT.URL)

	c.Google.ProjectID = getEnv("GOOGLE_STT_PROJECT_ID", c.Google.ProjectID)
	c.Google.KeyFile = os.Getenv("GOOGLE_STT_KEY_FILE")
	c.Google.Language = getEnv("GOOGLE_STT_LANGUAGE", c.Google.Language)

	c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)

	c.Watch.Input = getEnv("WATCH_INPUT", c.Watch.Input)
	c.Watch.Output = getEnv("WATCH_OUTPUT", c.Watch.Output)

	var err error
	if c.Watch.Docx, err = getEnvBool("WATCH_DOCX", c.Watch.Docx); err != nil {
		return err
	}
	if c.MaxUploadMB, err = getEnvInt("MAX_UPLOAD_MB", c.MaxUploadMB); err != nil {
		return err
	}
	if c.MaxRuns, err = getEnvInt("MAX_RUNS", c.MaxRuns); err != nil {
		return err
	}
	if c.Summary.MaxTokens, err = getEnvInt("SUMMARY_MAX_TOKENS", c.Summary.MaxTokens); err != nil {
		return err
	}
	if c.Summary.BulletPoints, err = getEnvInt("SUMMARY_BULLETS", c.Summary.BulletPoints); err != nil {
		return err
	}
	if c.Watch.MaxConcurrent, err = getEnvInt("WATCH_MAX_CONCURRENT", c.Watch.MaxConcurrent); err != nil {
		return err
	}
	if v := os.Getenv("SUMMARY_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("SUMMARY_TEMPERATURE: %w", err)
		}
		c.Summary.Temperature = float32(f)
	}

	return nil
}

// Validate checks structural settings. It does not check credentials.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	switch c.STTProvider {
	case "openai", "fpt", "google":
	default:
		return fmt.Errorf("unsupported STT provider: %s. Supported: openai, fpt, google", c.STTProvider)
	}
	switch c.SummaryProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported summary provider: %s. Supported: openai, gemini", c.SummaryProvider)
	}
	if c.Summary.Temperature < 0 || c.Summary.Temperature > 2 {
		return fmt.Errorf("summary.temperature must be within [0, 2], got %v", c.Summary.Temperature)
	}
	if c.Summary.MaxTokens <= 0 {
		return fmt.Errorf("summary.max_tokens must be positive")
	}
	if c.Summary.BulletPoints <= 0 {
		return fmt.Errorf("summary.bullet_points must be positive")
	}

	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 25
	}
	if c.MaxRuns <= 0 {
		c.MaxRuns = 100
	}
	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = 2
	}

	return nil
}

// CredentialError reports missing keys for the selected providers.
// It returns nil when every required key is present.
func (c *Config) CredentialError() error {
	var missing []string

	needOpenAI := c.STTProvider == "openai" || c.SummaryProvider == "openai"
	if needOpenAI && c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.STTProvider == "fpt" && c.FPT.APIKey == "" {
		missing = append(missing, "FPT_AI_API_KEY")
	}
	if c.STTProvider == "google" && c.Google.KeyFile == "" {
		missing = append(missing, "GOOGLE_STT_KEY_FILE")
	}
	if c.SummaryProvider == "gemini" && c.Gemini.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
}

// MaxUploadBytes is the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
