package core

import "errors"

// Classification failure taxonomy. Every one of these is recovered inside
// the core; they reach the caller only through ClassificationResult.Error.
var (
	// ErrValidation marks empty or malformed input, resolved locally with a
	// deterministic low-confidence chat result.
	ErrValidation = errors.New("invalid input")

	// ErrRemoteUnavailable marks a remote classifier timeout, transport
	// failure or malformed response, converted at the adapter boundary.
	ErrRemoteUnavailable = errors.New("remote classifier unavailable")

	// ErrContextStore marks a context store failure, degraded to "no context".
	ErrContextStore = errors.New("context store unavailable")

	// ErrAmbiguous marks a message no local rule fired on after the remote
	// classifier also failed or stayed below threshold.
	ErrAmbiguous = errors.New("ambiguous classification")
)
