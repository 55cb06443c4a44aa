package model

import (
	"fmt"
	"time"
)

// State is a pipeline run state
type State string

const (
	StateIdle         State = "idle"
	StateStaged       State = "staged"
	StateTranscribing State = "transcribing"
	StateTranscribed  State = "transcribed"
	StateSummarizing  State = "summarizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Terminal reports whether no further transitions can happen in the run
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransitionTo enforces the run state machine edges
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateIdle:
		return next == StateStaged
	case StateStaged:
		return next == StateTranscribing
	case StateTranscribing:
		return next == StateTranscribed || next == StateFailed
	case StateTranscribed:
		return next == StateSummarizing
	case StateSummarizing:
		return next == StateDone || next == StateFailed
	default:
		return false
	}
}

// ErrorKind classifies run failures and warnings
type ErrorKind string

const (
	KindStaging       ErrorKind = "staging"
	KindTranscription ErrorKind = "transcription"
	KindSummarization ErrorKind = "summarization"
	KindCleanup       ErrorKind = "cleanup"
	KindConfig        ErrorKind = "config"
)

// Failure causes reported to the user
const (
	CauseStagingFailed       = "staging failed"
	CauseTranscriptionFailed = "transcription failed"
	CauseEmptyTranscription  = "empty transcription"
	CauseSummarizationFailed = "summarization failed"
	CauseEmptySummary        = "empty summary"
	CauseCleanupFailed       = "cleanup failed"
	CauseMissingCredential   = "missing credential"
)

// RunError is a stage-aware error attached to a run
type RunError struct {
	Kind    ErrorKind `json:"kind"`
	Cause   string    `json:"cause"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error formats the failure for logs and UI
func (e *RunError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Cause, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status is one state transition observed during a run
type Status struct {
	RunID   string    `json:"run_id"`
	State   State     `json:"state"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Run is the outcome of one pipeline invocation for one uploaded file
type Run struct {
	ID           string      `json:"id"`
	FileName     string      `json:"file_name"`
	SizeBytes    int         `json:"size_bytes"`
	AudioHash    string      `json:"audio_hash,omitempty"`
	State        State       `json:"state"`
	Transcript   string      `json:"transcript,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	BulletPoints []string    `json:"bullet_points,omitempty"`
	Failure      *RunError   `json:"failure,omitempty"`
	Warnings     []*RunError `json:"warnings,omitempty"`
	History      []Status    `json:"history"`
	Provider     string      `json:"stt_provider,omitempty"`
	Summarizer   string      `json:"summarizer,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
}

// Succeeded reports whether the run reached the done state
func (r *Run) Succeeded() bool {
	return r != nil && r.State == StateDone
}

// PartialSuccess reports a failed run that still produced a transcript
func (r *Run) PartialSuccess() bool {
	return r != nil && r.State == StateFailed && r.Transcript != ""
}

// Clone returns a copy that shares no slices with r
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	c := *r
	c.BulletPoints = append([]string(nil), r.BulletPoints...)
	c.Warnings = append([]*RunError(nil), r.Warnings...)
	c.History = append([]Status(nil), r.History...)
	return &c
}
