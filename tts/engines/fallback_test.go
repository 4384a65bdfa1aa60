package engines

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/vox/tts"
	"github.com/dgnsrekt/vox/tts/engines/mock"
)

func fallbackPair(t *testing.T, maxFailures int) (*mock.Engine, *mock.Engine, *Fallback) {
	t.Helper()
	primary := mock.New(tts.MockConfig{}, t.TempDir())
	secondary := mock.New(tts.MockConfig{}, t.TempDir())
	return primary, secondary, NewFallback(primary, secondary, maxFailures)
}

func TestFallbackName(t *testing.T) {
	_, _, fb := fallbackPair(t, 3)
	if fb.Name() != "mock+mock" {
		t.Errorf("unexpected composite name %q", fb.Name())
	}
}

func TestFallbackPrimarySuccess(t *testing.T) {
	primary, secondary, fb := fallbackPair(t, 3)

	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if primary.CallCount() != 1 || secondary.CallCount() != 0 {
		t.Errorf("expected only the primary to be called, got primary=%d secondary=%d",
			primary.CallCount(), secondary.CallCount())
	}
	if fb.UsingFallback() {
		t.Error("expected the primary to stay active")
	}
}

func TestFallbackSwitchesAfterMaxFailures(t *testing.T) {
	primary, secondary, fb := fallbackPair(t, 3)
	primary.SetFailure(errors.New("outage"))

	// The first two failures return errors without switching.
	for i := 0; i < 2; i++ {
		if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err == nil {
			t.Fatal("expected a primary failure")
		}
		if fb.UsingFallback() {
			t.Fatalf("switched too early after %d failures", i+1)
		}
	}

	// The third failure trips the switch and serves from the fallback.
	path, err := fb.GenerateAudio(context.Background(), "hello", "out")
	if err != nil {
		t.Fatalf("expected the fallback to serve the request: %v", err)
	}
	if path == "" {
		t.Error("expected a path from the fallback")
	}
	if !fb.UsingFallback() {
		t.Error("expected the fallback to be active")
	}
	if secondary.CallCount() != 1 {
		t.Errorf("expected one fallback call, got %d", secondary.CallCount())
	}

	// Subsequent calls bypass the primary entirely.
	primaryCalls := primary.CallCount()
	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if primary.CallCount() != primaryCalls {
		t.Error("expected the primary to be bypassed while the fallback is active")
	}
}

func TestFallbackSuccessResetsFailures(t *testing.T) {
	primary, _, fb := fallbackPair(t, 2)
	primary.SetFailure(errors.New("blip"))

	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err == nil {
		t.Fatal("expected a primary failure")
	}

	primary.ClearFailure()
	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err != nil {
		t.Fatalf("expected the primary to recover: %v", err)
	}

	// The counter restarted, so one more failure is not enough to switch.
	primary.SetFailure(errors.New("blip"))
	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err == nil {
		t.Fatal("expected a primary failure")
	}
	if fb.UsingFallback() {
		t.Error("expected the failure counter to have been reset by the success")
	}
}

func TestFallbackIgnoresCancellation(t *testing.T) {
	primary, _, fb := fallbackPair(t, 1)
	primary.SetFailure(tts.NewSynthesisError("mock", tts.FailureCanceled, context.Canceled))

	// Force the mock to return a canceled-tagged error directly.
	_, err := fb.GenerateAudio(context.Background(), "hello", "out")
	if err == nil {
		t.Fatal("expected an error")
	}
	if fb.UsingFallback() {
		t.Error("a canceled call must not count toward the failure threshold")
	}
}

func TestFallbackBothFail(t *testing.T) {
	primary, secondary, fb := fallbackPair(t, 1)
	primary.SetFailure(errors.New("primary down"))
	secondary.SetFailure(errors.New("secondary down"))

	_, err := fb.GenerateAudio(context.Background(), "hello", "out")
	if err == nil {
		t.Fatal("expected both engines to fail")
	}
	for _, want := range []string{"primary down", "secondary down"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestFallbackReset(t *testing.T) {
	primary, _, fb := fallbackPair(t, 1)
	primary.SetFailure(errors.New("outage"))

	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err != nil {
		t.Fatalf("expected the fallback to serve: %v", err)
	}
	if !fb.UsingFallback() {
		t.Fatal("expected the fallback to be active")
	}

	primary.ClearFailure()
	fb.Reset()
	if fb.UsingFallback() {
		t.Error("expected Reset to restore the primary")
	}

	calls := primary.CallCount()
	if _, err := fb.GenerateAudio(context.Background(), "hello", "out"); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if primary.CallCount() != calls+1 {
		t.Error("expected the primary to serve after Reset")
	}
}
