package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meetsum/internal/logger"
)

// FPTProvider implements STT using FPT.AI Speech-to-Text API
type FPTProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
	log        logger.Logger
}

// NewFPTProvider creates a new FPT STT provider
func NewFPTProvider(apiKey, url string, log logger.Logger) *FPTProvider {
	return &FPTProvider{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		log:        log,
	}
}

// Name returns the provider name
func (p *FPTProvider) Name() string {
	return "fpt"
}

// fptResponse represents FPT.AI STT API response
type fptResponse struct {
	Hypotheses []struct {
		Utterance  string  `json:"utterance"`
		Confidence float64 `json:"confidence"`
	} `json:"hypotheses"`
	ErrorCode int    `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Transcribe sends the raw audio bytes to FPT.AI and returns the best hypothesis
func (p *FPTProvider) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	p.log.Info(ctx, "[FPT STT] Processing audio file: %s, size: %d bytes, extension: %s",
		audioPath, len(audioBytes), filepath.Ext(audioPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(audioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to FPT.AI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	p.log.Debug(ctx, "[FPT STT] Response preview: %s", preview(body))

	failed := &Result{Provider: p.Name(), RawResponse: string(body)}

	if resp.StatusCode != http.StatusOK {
		p.log.Error(ctx, "[FPT STT] API error: Status %d, Body: %s", resp.StatusCode, preview(body))
		return failed, fmt.Errorf("FPT.AI API returned status %d: %s", resp.StatusCode, preview(body))
	}

	var sttResp fptResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return failed, fmt.Errorf("failed to parse FPT.AI response: %w", err)
	}

	if sttResp.ErrorCode != 0 {
		p.log.Error(ctx, "[FPT STT] API error code %d: %s", sttResp.ErrorCode, sttResp.Message)
		return failed, fmt.Errorf("FPT.AI API error %d: %s", sttResp.ErrorCode, sttResp.Message)
	}

	if len(sttResp.Hypotheses) == 0 {
		p.log.Warn(ctx, "[FPT STT] No hypotheses returned")
		return failed, fmt.Errorf("no speech detected in audio: %w", ErrEmptyTranscript)
	}

	// first hypothesis is the best one
	hyp := sttResp.Hypotheses[0]
	transcript := strings.TrimSpace(hyp.Utterance)
	if transcript == "" {
		return failed, fmt.Errorf("FPT.AI: %w", ErrEmptyTranscript)
	}

	p.log.Info(ctx, "[FPT STT] Transcription successful: confidence=%.2f, length=%d, duration=%v",
		hyp.Confidence, len(transcript), time.Since(startTime))

	return &Result{
		Transcript:  transcript,
		Confidence:  hyp.Confidence,
		Provider:    p.Name(),
		RawResponse: string(body),
	}, nil
}
