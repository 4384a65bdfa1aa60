package tts

import (
	"errors"
	"fmt"
)

// Common errors for the TTS system.
var (
	ErrEmptyText     = errors.New("text cannot be empty")
	ErrUnknownEngine = errors.New("unknown TTS engine")
)

// FailureKind classifies a synthesis failure so callers can branch on the
// tag instead of parsing messages.
type FailureKind int

const (
	// FailureRequest covers failures building or sending the request,
	// including network errors and an unreachable provider.
	FailureRequest FailureKind = iota
	// FailureServer covers non-2xx provider responses and vendor-side
	// rejections.
	FailureServer
	// FailureDecode covers malformed provider responses.
	FailureDecode
	// FailureWrite covers local filesystem failures while persisting the
	// output artifact.
	FailureWrite
	// FailureCanceled covers context cancellation and deadline expiry.
	FailureCanceled
)

// String returns a human-readable name for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureRequest:
		return "request"
	case FailureServer:
		return "server"
	case FailureDecode:
		return "decode"
	case FailureWrite:
		return "write"
	case FailureCanceled:
		return "canceled"
	}
	return "unknown"
}

// SynthesisError is the tagged per-call failure every engine returns.
// The engine name and kind identify what went wrong; Err carries the
// underlying cause.
type SynthesisError struct {
	Engine string
	Kind   FailureKind
	Err    error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s: synthesis failed (%s): %v", e.Engine, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error { return e.Err }

// NewSynthesisError creates a tagged synthesis failure.
func NewSynthesisError(engine string, kind FailureKind, err error) *SynthesisError {
	return &SynthesisError{Engine: engine, Kind: kind, Err: err}
}

// ConfigError is a fatal construction-time error: a missing model file, a
// missing runtime, or an invalid parameter. It is never returned from
// GenerateAudio; an engine that fails construction is unusable.
type ConfigError struct {
	Engine string
	Err    error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: configuration error: %v", e.Engine, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a construction-time configuration error.
func NewConfigError(engine string, err error) *ConfigError {
	return &ConfigError{Engine: engine, Err: err}
}

// FailureKindOf extracts the failure kind from an error chain. The second
// return is false when the error is not a SynthesisError.
func FailureKindOf(err error) (FailureKind, bool) {
	var se *SynthesisError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
