package model

import (
	"errors"
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateStaged, true},
		{StateIdle, StateTranscribing, false},
		{StateStaged, StateTranscribing, true},
		{StateStaged, StateFailed, false},
		{StateTranscribing, StateTranscribed, true},
		{StateTranscribing, StateFailed, true},
		{StateTranscribed, StateSummarizing, true},
		{StateSummarizing, StateDone, true},
		{StateSummarizing, StateFailed, true},
		{StateDone, StateIdle, false},
		{StateFailed, StateStaged, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRunErrorWrapping(t *testing.T) {
	base := errors.New("connection reset")
	err := &RunError{Kind: KindTranscription, Cause: CauseTranscriptionFailed, Err: base}

	if !errors.Is(err, base) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if got := err.Error(); got != "transcription: transcription failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}

	var nilErr *RunError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil RunError should be inert")
	}
}

func TestRunOutcomeAndClone(t *testing.T) {
	run := &Run{
		ID:           "r",
		State:        StateFailed,
		Transcript:   "text",
		BulletPoints: []string{"a"},
		History:      []Status{{State: StateIdle}},
	}
	if run.Succeeded() || !run.PartialSuccess() {
		t.Errorf("Succeeded=%v PartialSuccess=%v", run.Succeeded(), run.PartialSuccess())
	}

	c := run.Clone()
	c.BulletPoints[0] = "b"
	c.History[0].State = StateDone
	if run.BulletPoints[0] != "a" || run.History[0].State != StateIdle {
		t.Error("Clone shares slices with the original")
	}

	if !State(StateDone).Terminal() || StateSummarizing.Terminal() {
		t.Error("Terminal() misreports states")
	}
}
