package tts

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSynthesisErrorMessage(t *testing.T) {
	err := NewSynthesisError("cartesia", FailureServer, errors.New("unexpected status 500"))

	msg := err.Error()
	for _, want := range []string{"cartesia", "server", "unexpected status 500"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestSynthesisErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSynthesisError("voicevox", FailureRequest, cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the underlying cause")
	}

	wrapped := fmt.Errorf("generating audio: %w", err)
	var se *SynthesisError
	if !errors.As(wrapped, &se) {
		t.Fatal("expected errors.As to find SynthesisError through wrapping")
	}
	if se.Engine != "voicevox" || se.Kind != FailureRequest {
		t.Errorf("unexpected error fields: engine=%q kind=%v", se.Engine, se.Kind)
	}
}

func TestFailureKindOf(t *testing.T) {
	err := NewSynthesisError("piper", FailureWrite, errors.New("disk full"))

	kind, ok := FailureKindOf(fmt.Errorf("wrapped: %w", err))
	if !ok {
		t.Fatal("expected a failure kind")
	}
	if kind != FailureWrite {
		t.Errorf("expected FailureWrite, got %v", kind)
	}

	if _, ok := FailureKindOf(errors.New("plain error")); ok {
		t.Error("expected no failure kind for a plain error")
	}
}

func TestFailureKindString(t *testing.T) {
	cases := map[FailureKind]string{
		FailureRequest:  "request",
		FailureServer:   "server",
		FailureDecode:   "decode",
		FailureWrite:    "write",
		FailureCanceled: "canceled",
		FailureKind(99): "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("FailureKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("model not found")
	err := NewConfigError("piper", cause)

	if !strings.Contains(err.Error(), "piper") {
		t.Errorf("expected engine name in %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the underlying cause")
	}
}
