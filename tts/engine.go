// Package tts defines the engine contract shared by all text-to-speech
// backends, along with cache file naming, configuration, and the typed
// failure model adapters map their errors into.
package tts

import "context"

// Engine is the interface all TTS backends implement.
//
// Implementations are constructed once with their full configuration and
// hold no mutable state beyond a reusable client or model handle. A single
// GenerateAudio call blocks until the output file is fully written or the
// call fails.
type Engine interface {
	// GenerateAudio synthesizes text into an audio file and returns the
	// path of the written file. text must be non-empty. If stem is
	// non-empty it is used verbatim as the output base name, making the
	// output path deterministic and cacheable; if empty, a unique name is
	// generated so concurrent calls never collide.
	//
	// Failures are returned as *SynthesisError. A successful call writes
	// exactly one fully-formed file in the engine's configured format.
	GenerateAudio(ctx context.Context, text, stem string) (string, error)

	// Name returns the engine identifier (e.g. "cartesia").
	Name() string
}

// Extension values engines produce.
const (
	ExtWav = "wav"
	ExtMP3 = "mp3"
)

// Excerpt shortens text for log output. The full string is always sent to
// the provider; only logs are truncated.
func Excerpt(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
