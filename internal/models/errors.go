package models

import (
	"errors"
	"fmt"
)

// Pipeline failure taxonomy. Every failure mode resolves to one of these typed
// errors; nothing propagates an unhandled failure past the ingest boundary.
var (
	// ErrRoutingAmbiguous - no sportsbook signature scored above threshold.
	// Non-fatal: the generic ruleset still normalizes the text.
	ErrRoutingAmbiguous = errors.New("routing ambiguous: no format signature above threshold")

	// ErrSegmentationDegenerate - no leg anchors found; the whole text is
	// treated as a single leg block.
	ErrSegmentationDegenerate = errors.New("segmentation degenerate: no leg anchors found")

	// ErrClassificationLowConfidence - surfaced on the leg, does not abort the slip.
	ErrClassificationLowConfidence = errors.New("classification confidence below threshold")

	// ErrFieldParseFailure - a mandatory field could not be extracted; the leg
	// is dropped and the slip continues with the remaining legs.
	ErrFieldParseFailure = errors.New("mandatory field missing")

	// ErrParseFailure - every leg of the slip failed extraction.
	ErrParseFailure = errors.New("slip parse failure: no parseable legs")

	// ErrAssemblyInconsistent - stated total stake disagrees with summed leg
	// stakes; the slip is retained with a warning flag.
	ErrAssemblyInconsistent = errors.New("assembly inconsistent: stake mismatch")

	// ErrMatchTimeout - event feed unavailable this cycle; retried next cycle.
	ErrMatchTimeout = errors.New("event feed query timed out")

	// ErrMatchExhausted - bounded match retries exceeded; the bet is marked
	// UNMATCHABLE, a terminal but non-error outcome.
	ErrMatchExhausted = errors.New("match attempts exhausted")

	// ErrNotFound - no record with the given identifier.
	ErrNotFound = errors.New("record not found")

	// ErrTerminalState - mutation attempted on a settled tracked bet.
	ErrTerminalState = errors.New("tracked bet already in terminal state")
)

// LegError annotates a leg-level extraction failure with the leg position and
// the field that failed.
type LegError struct {
	LegIndex int
	Field    string
	Err      error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("leg %d: field %q: %v", e.LegIndex, e.Field, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}

// NewLegError wraps an extraction failure for a specific leg field.
func NewLegError(legIndex int, field string, err error) *LegError {
	return &LegError{LegIndex: legIndex, Field: field, Err: err}
}
