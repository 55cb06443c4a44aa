package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meetsum/internal/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleRecognizeURL = "https://speech.googleapis.com/v1/speech:recognize"
	googleScope        = "https://www.googleapis.com/auth/cloud-platform"
)

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API
type GoogleProvider struct {
	projectID  string
	apiKey     string
	language   string
	endpoint   string
	httpClient *http.Client
	useAPIKey  bool
	log        logger.Logger
}

// IsGoogleAPIKey reports whether keyData looks like a Google API key
// rather than service account JSON or a path to it.
func IsGoogleAPIKey(keyData string) bool {
	k := strings.TrimSpace(keyData)
	return len(k) == 39 && strings.HasPrefix(k, "AIzaSy")
}

// NewGoogleProvider creates a new Google STT provider.
// keyData can be either:
//   - An API key (39 characters, starts with "AIzaSy")
//   - A file path to a JSON service account key
//   - A JSON string containing the service account credentials
func NewGoogleProvider(ctx context.Context, projectID, keyData, language string, log logger.Logger) (*GoogleProvider, error) {
	if language == "" {
		language = "en-US"
	}
	p := &GoogleProvider{
		projectID: projectID,
		language:  language,
		endpoint:  googleRecognizeURL,
		log:       log,
	}

	keyData = strings.TrimSpace(keyData)
	if IsGoogleAPIKey(keyData) {
		log.Info(ctx, "[Google STT] Using API key authentication")
		p.apiKey = keyData
		p.useAPIKey = true
		p.httpClient = &http.Client{Timeout: 90 * time.Second}
		return p, nil
	}

	var creds *google.Credentials
	var err error
	switch {
	case keyData == "":
		creds, err = google.FindDefaultCredentials(ctx, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_KEY_FILE", err)
		}
	default:
		jsonData := []byte(keyData)
		if !strings.HasPrefix(keyData, "{") {
			log.Info(ctx, "[Google STT] Reading key file: %s", keyData)
			jsonData, err = os.ReadFile(keyData)
			if err != nil {
				return nil, fmt.Errorf("failed to read key file '%s': %w", keyData, err)
			}
		}
		creds, err = google.CredentialsFromJSON(ctx, jsonData, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 90 * time.Second
	p.httpClient = client
	log.Info(ctx, "[Google STT] Using service account for project: %s", projectID)
	return p, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

type googleRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleAudio             `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model,omitempty"`
	UseEnhanced                bool   `json:"useEnhanced,omitempty"`
}

type googleAudio struct {
	Content string `json:"content"` // base64
}

type googleResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *googleAPIError `json:"error,omitempty"`
}

type googleAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Transcribe transcribes an audio file with a synchronous recognize call.
// Alternatives from every result segment are joined in order.
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	fileExt := filepath.Ext(audioPath)
	p.log.Info(ctx, "[Google STT] Processing audio file: %s, size: %d bytes, extension: %s",
		audioPath, len(audioBytes), fileExt)

	encoding, sampleRate := googleAudioConfig(fileExt)
	reqJSON, err := json.Marshal(googleRequest{
		Config: googleRecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               p.language,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_long",
			UseEnhanced:                true,
		},
		Audio: googleAudio{Content: base64.StdEncoding.EncodeToString(audioBytes)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := p.endpoint
	if p.useAPIKey {
		apiURL += "?key=" + url.QueryEscape(p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !p.useAPIKey && p.projectID != "" {
		req.Header.Set("x-goog-user-project", p.projectID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Error(ctx, "[Google STT] HTTP error: %v", err)
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	p.log.Debug(ctx, "[Google STT] Response preview: %s", preview(body))

	failed := &Result{Provider: p.Name(), RawResponse: string(body)}

	var sttResp googleResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return failed, fmt.Errorf("Google Speech-to-Text API returned status %d: %s", resp.StatusCode, preview(body))
		}
		return failed, fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err)
	}

	if sttResp.Error != nil {
		p.log.Error(ctx, "[Google STT] API error: Code %d, Status %s, Message: %s",
			sttResp.Error.Code, sttResp.Error.Status, sttResp.Error.Message)
		return failed, fmt.Errorf("Google Speech-to-Text API error: %s", sttResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return failed, fmt.Errorf("Google Speech-to-Text API returned status %d: %s", resp.StatusCode, preview(body))
	}

	var parts []string
	var confidence float64
	for _, r := range sttResp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if t := strings.TrimSpace(alt.Transcript); t != "" {
			parts = append(parts, t)
			if confidence == 0 {
				confidence = alt.Confidence
			}
		}
	}

	transcript := strings.Join(parts, " ")
	if transcript == "" {
		p.log.Warn(ctx, "[Google STT] No speech detected")
		return failed, fmt.Errorf("Google Speech-to-Text: %w", ErrEmptyTranscript)
	}

	p.log.Info(ctx, "[Google STT] Transcription successful: confidence=%.2f, length=%d, duration=%v",
		confidence, len(transcript), time.Since(startTime))

	return &Result{
		Transcript:  transcript,
		Confidence:  confidence,
		Provider:    p.Name(),
		RawResponse: string(body),
	}, nil
}

// googleAudioConfig determines encoding and sample rate based on file extension
func googleAudioConfig(fileExt string) (string, int) {
	switch strings.ToLower(fileExt) {
	case ".wav":
		return "LINEAR16", 16000
	case ".mp3":
		return "MP3", 44100
	case ".m4a", ".aac":
		return "AAC", 44100
	case ".ogg":
		return "OGG_OPUS", 48000
	case ".flac":
		return "FLAC", 44100
	default:
		return "LINEAR16", 16000
	}
}
