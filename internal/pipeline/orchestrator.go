package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetsum/internal/ai"
	"meetsum/internal/logger"
	"meetsum/internal/model"
	"meetsum/internal/storage"
	"meetsum/internal/stt"

	"github.com/google/uuid"
)

// User-facing status and failure messages
const (
	MsgProcessing          = "Processing your audio file... Please wait."
	MsgStaged              = "Audio file received."
	MsgTranscribing        = "Transcribing audio..."
	MsgTranscribed         = "Transcription complete."
	MsgSummarizing         = "Generating summary..."
	MsgDone                = "Processing complete!"
	MsgStagingFailed       = "Failed to process uploaded file. Please try again."
	MsgTranscriptionFailed = "Failed to transcribe audio. Please check the file and try again."
	MsgSummarizationFailed = "Failed to generate summary. Please try again."
	msgCleanupWarning      = "Warning: Could not delete temporary file: %v"
)

// Stager stages uploads on disk and removes them once a run ends
type Stager interface {
	Stage(data []byte, fileName string) (string, error)
	Remove(path string) error
}

// Orchestrator runs upload → transcription → summary for one file at a time
// per call. Independent calls may run concurrently; each owns its staged file.
type Orchestrator struct {
	stager      Stager
	transcriber stt.Provider
	summarizer  ai.Summarizer
	log         logger.Logger
	onStatus    func(model.Status)
	newID       func() string
	now         func() time.Time
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithStatusHook registers a callback invoked on every state change
func WithStatusHook(fn func(model.Status)) Option {
	return func(o *Orchestrator) { o.onStatus = fn }
}

// WithIDGenerator overrides run id generation
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithClock overrides the time source
func WithClock(fn func() time.Time) Option {
	return func(o *Orchestrator) { o.now = fn }
}

// New builds an orchestrator from already configured clients
func New(stager Stager, transcriber stt.Provider, summarizer ai.Summarizer, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stager:      stager,
		transcriber: transcriber,
		summarizer:  summarizer,
		log:         log,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit processes one uploaded file and always returns a run in a terminal
// outcome: done, failed, or idle with a staging failure. The staged file is
// removed exactly once whenever staging succeeded.
func (o *Orchestrator) Submit(ctx context.Context, data []byte, fileName string) *model.Run {
	run := &model.Run{
		ID:         o.newID(),
		FileName:   fileName,
		SizeBytes:  len(data),
		State:      model.StateIdle,
		Provider:   o.transcriber.Name(),
		Summarizer: o.summarizer.Name(),
		StartedAt:  o.now(),
	}
	ctx = logger.WithRunID(ctx, run.ID)
	defer func() { run.FinishedAt = o.now() }()

	if len(data) > 0 {
		run.AudioHash = storage.Fingerprint(data)
	}

	o.log.Info(ctx, "[Pipeline] New run for %s (%d bytes)", fileName, len(data))
	o.emit(run, MsgProcessing)

	path, err := o.stager.Stage(data, fileName)
	if err != nil {
		o.log.Error(ctx, "[Pipeline] Staging failed: %v", err)
		run.Failure = &model.RunError{
			Kind:    model.KindStaging,
			Cause:   model.CauseStagingFailed,
			Message: MsgStagingFailed,
			Err:     err,
		}
		o.emit(run, MsgStagingFailed)
		return run
	}
	defer o.cleanup(ctx, run, path)

	o.advance(ctx, run, model.StateStaged, MsgStaged)

	o.advance(ctx, run, model.StateTranscribing, MsgTranscribing)
	transcript, err := o.transcribe(ctx, path)
	if err != nil {
		cause := model.CauseTranscriptionFailed
		if errors.Is(err, stt.ErrEmptyTranscript) {
			cause = model.CauseEmptyTranscription
		}
		o.fail(ctx, run, model.KindTranscription, cause, MsgTranscriptionFailed, err)
		return run
	}
	run.Transcript = transcript
	o.advance(ctx, run, model.StateTranscribed, MsgTranscribed)

	o.advance(ctx, run, model.StateSummarizing, MsgSummarizing)
	summary, err := o.summarize(ctx, transcript)
	if err != nil {
		cause := model.CauseSummarizationFailed
		if errors.Is(err, ai.ErrEmptySummary) {
			cause = model.CauseEmptySummary
		}
		o.fail(ctx, run, model.KindSummarization, cause, MsgSummarizationFailed, err)
		return run
	}
	run.Summary = summary
	run.BulletPoints = ai.ParseBullets(summary)

	o.advance(ctx, run, model.StateDone, MsgDone)
	return run
}

func (o *Orchestrator) transcribe(ctx context.Context, path string) (string, error) {
	res, err := o.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}
	if res == nil || strings.TrimSpace(res.Transcript) == "" {
		return "", fmt.Errorf("%s: %w", o.transcriber.Name(), stt.ErrEmptyTranscript)
	}
	o.log.Info(ctx, "[Pipeline] Transcript received from %s: %d characters", res.Provider, len(res.Transcript))
	return res.Transcript, nil
}

func (o *Orchestrator) summarize(ctx context.Context, transcript string) (string, error) {
	summary, err := o.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("%s: %w", o.summarizer.Name(), ai.ErrEmptySummary)
	}
	return summary, nil
}

func (o *Orchestrator) advance(ctx context.Context, run *model.Run, next model.State, msg string) {
	if !run.State.CanTransitionTo(next) {
		o.log.Error(ctx, "[Pipeline] Invalid transition: %s -> %s", run.State, next)
	}
	o.log.Debug(ctx, "[Pipeline] %s -> %s", run.State, next)
	run.State = next
	o.emit(run, msg)
}

func (o *Orchestrator) fail(ctx context.Context, run *model.Run, kind model.ErrorKind, cause, msg string, err error) {
	o.log.Error(ctx, "[Pipeline] %s: %s: %v", kind, cause, err)
	run.Failure = &model.RunError{
		Kind:    kind,
		Cause:   cause,
		Message: msg,
		Err:     err,
	}
	o.advance(ctx, run, model.StateFailed, msg)
}

// cleanup makes the single removal attempt for a staged file.
// A failure becomes a warning and never changes the outcome.
func (o *Orchestrator) cleanup(ctx context.Context, run *model.Run, path string) {
	if err := o.stager.Remove(path); err != nil {
		o.log.Warn(ctx, "[Pipeline] Could not delete temporary file %s: %v", path, err)
		run.Warnings = append(run.Warnings, &model.RunError{
			Kind:    model.KindCleanup,
			Cause:   model.CauseCleanupFailed,
			Message: fmt.Sprintf(msgCleanupWarning, err),
			Err:     err,
		})
		return
	}
	o.log.Debug(ctx, "[Pipeline] Removed temporary file %s", path)
}

func (o *Orchestrator) emit(run *model.Run, msg string) {
	st := model.Status{
		RunID:   run.ID,
		State:   run.State,
		Message: msg,
		At:      o.now(),
	}
	run.History = append(run.History, st)
	if o.onStatus != nil {
		o.onStatus(st)
	}
}
