// Package mock provides a mock TTS engine for testing.
package mock

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dgnsrekt/vox/tts"
)

// Engine implements the TTS engine contract for testing. It writes a small
// silent wav file instead of calling a real backend.
type Engine struct {
	namer tts.CacheNamer
	delay time.Duration

	// Control for testing
	mu           sync.Mutex
	shouldFail   bool
	failureError error
	callCount    int
}

// New creates a new mock TTS engine writing into cacheDir.
func New(cfg tts.MockConfig, cacheDir string) *Engine {
	return &Engine{
		namer: tts.CacheNamer{Dir: cacheDir, Ext: tts.ExtWav},
		delay: cfg.GenerationDelay,
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return "mock" }

// GenerateAudio simulates synthesis by writing a short silent wav file.
func (e *Engine) GenerateAudio(ctx context.Context, text, stem string) (string, error) {
	e.mu.Lock()
	e.callCount++
	fail, failErr := e.shouldFail, e.failureError
	e.mu.Unlock()

	if text == "" {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureRequest, tts.ErrEmptyText)
	}

	if fail {
		var se *tts.SynthesisError
		if errors.As(failErr, &se) {
			return "", failErr
		}
		return "", tts.NewSynthesisError(e.Name(), tts.FailureServer, failErr)
	}

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return "", tts.NewSynthesisError(e.Name(), tts.FailureCanceled, ctx.Err())
		}
	}

	if err := e.namer.EnsureDir(); err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite, err)
	}

	path := e.namer.FileName(stem)
	if err := os.WriteFile(path, silentWav(len(text)), 0o644); err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite, err)
	}
	return path, nil
}

// Test control methods

// SetFailure configures the engine to fail with the given error. An error
// that already is a *tts.SynthesisError is returned verbatim, which lets
// tests exercise specific failure kinds.
func (e *Engine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shouldFail = true
	e.failureError = err
}

// ClearFailure resets the engine to normal operation.
func (e *Engine) ClearFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shouldFail = false
	e.failureError = nil
}

// CallCount returns the number of GenerateAudio calls.
func (e *Engine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// silentWav builds a minimal valid wav file containing silence. Duration
// scales with the text length so outputs are distinguishable in tests.
func silentWav(textLen int) []byte {
	const sampleRate = 22050
	samples := sampleRate / 10 * (1 + textLen/50) // ~100ms per 50 chars
	data := make([]byte, samples*2)               // 16-bit mono

	buf := make([]byte, 0, 44+len(data))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(data)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, 1) // mono
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate*2)
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)
	return buf
}
