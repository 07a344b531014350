package reconcile

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a stage failure so the host can pick the right
// user-facing message.
type ErrorKind string

const (
	// KindSourceUnreadable covers missing, locked, or malformed local
	// sources.
	KindSourceUnreadable ErrorKind = "source_unreadable"

	// KindAuth covers invalid API keys, expired access tokens, and
	// missing family-group membership.
	KindAuth ErrorKind = "auth"

	// KindRateLimited marks a fetch that exhausted its retry budget.
	KindRateLimited ErrorKind = "rate_limited"

	// KindTransport covers network failures outside rate limiting.
	KindTransport ErrorKind = "transport"

	// KindDeserialize covers unexpected response or payload shapes.
	KindDeserialize ErrorKind = "deserialize"
)

// StageError is a classified failure of one pipeline stage. Stages absorb
// their own failures; the engine logs each and surfaces only the most
// recent one on the Result.
type StageError struct {
	// Stage names the pipeline stage that failed, e.g. "installed scan"
	// or "additional account 76561198012345678".
	Stage string `json:"stage"`

	// Kind is the failure classification.
	Kind ErrorKind `json:"kind"`

	// Err is the underlying error.
	Err error `json:"-"`

	// Message is Err's text, kept separately so the error survives JSON
	// encoding on the serve surface.
	Message string `json:"message"`
}

// NewStageError wraps err as a classified stage failure.
func NewStageError(stage string, kind ErrorKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err, Message: err.Error()}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }

// asStageError normalizes an arbitrary stage failure: classified errors
// pass through (picking up the stage name if they lack one), anything else
// gets the fallback kind.
func asStageError(stage string, fallback ErrorKind, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		if se.Stage == "" {
			se.Stage = stage
		}
		return se
	}
	return NewStageError(stage, fallback, err)
}
