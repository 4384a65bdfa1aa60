package engines

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/vox/tts"
)

// Fallback wraps a primary engine with automatic fallback to a secondary
// engine when the primary fails consistently.
type Fallback struct {
	primary     tts.Engine
	fallback    tts.Engine
	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallback creates an engine with automatic fallback capability. After
// maxFailures consecutive primary failures the secondary engine takes
// over until Reset is called.
func NewFallback(primary, fallback tts.Engine, maxFailures int) *Fallback {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Fallback{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
}

// Name returns the composite engine identifier.
func (f *Fallback) Name() string {
	return fmt.Sprintf("%s+%s", f.primary.Name(), f.fallback.Name())
}

// GenerateAudio generates audio using the active engine, switching to the
// fallback after repeated primary failures.
func (f *Fallback) GenerateAudio(ctx context.Context, text, stem string) (string, error) {
	f.mu.Lock()
	usingFallback := f.usingFallback
	f.mu.Unlock()

	if usingFallback {
		return f.fallback.GenerateAudio(ctx, text, stem)
	}

	path, err := f.primary.GenerateAudio(ctx, text, stem)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("Primary engine recovered", "engine", f.primary.Name(), "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return path, nil
	}

	// A canceled call says nothing about engine health.
	if kind, ok := tts.FailureKindOf(err); ok && kind == tts.FailureCanceled {
		return "", err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	switchOver := failures >= f.maxFailures
	if switchOver {
		f.usingFallback = true
	}
	f.mu.Unlock()

	if !switchOver {
		log.Warn("Primary engine failed",
			"engine", f.primary.Name(),
			"attempt", fmt.Sprintf("%d/%d", failures, f.maxFailures),
			"error", err)
		return "", err
	}

	log.Warn("Switching to fallback engine",
		"primary", f.primary.Name(),
		"fallback", f.fallback.Name(),
		"failures", failures)

	path, fbErr := f.fallback.GenerateAudio(ctx, text, stem)
	if fbErr != nil {
		return "", fmt.Errorf("both engines failed: primary=%v, fallback=%w", err, fbErr)
	}
	return path, nil
}

// Reset returns control to the primary engine.
func (f *Fallback) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
	log.Info("Reset to primary engine", "engine", f.primary.Name())
}

// UsingFallback reports whether the secondary engine is active.
func (f *Fallback) UsingFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usingFallback
}
