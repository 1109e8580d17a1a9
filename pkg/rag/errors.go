package rag

import (
	"errors"
	"fmt"
)

// Stage names used in error context and log lines.
const (
	StagePlan     = "plan"
	StageRetrieve = "retrieve"
	StageDraft    = "draft"
	StageVerify   = "verify"
)

var (
	// ErrDraftingFailed marks a fatal reasoning failure during Draft.
	// There is no safe fallback for drafting; the run aborts.
	ErrDraftingFailed = errors.New("drafting failed")

	// ErrVerificationFailed marks a fatal reasoning failure during Verify.
	// The draft is discarded rather than surfaced unverified.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrEmptyQuestion rejects a run before any stage executes.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// StageError wraps a collaborator failure with the stage it occurred in, so
// callers can decide on retry with full context. Plan-stage failures are
// absorbed by the fallback and never surface as a StageError.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage string, sentinel error, cause error) *StageError {
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", sentinel, cause)}
}
