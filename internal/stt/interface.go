package stt

import (
	"context"
	"errors"
)

// ErrEmptyTranscript is returned when a provider answers with no usable text
var ErrEmptyTranscript = errors.New("empty transcript")

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe sends one staged audio file to the remote service.
	// A single attempt is made; callers decide what a failure means.
	Transcribe(ctx context.Context, audioPath string) (*Result, error)

	// Name returns the name of the provider (e.g., "openai", "fpt", "google")
	Name() string
}
