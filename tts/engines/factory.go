// Package engines constructs and composes text-to-speech engines.
package engines

import (
	"fmt"
	"sync"

	"github.com/dgnsrekt/vox/tts"
	"github.com/dgnsrekt/vox/tts/engines/cartesia"
	"github.com/dgnsrekt/vox/tts/engines/mock"
	"github.com/dgnsrekt/vox/tts/engines/piper"
	"github.com/dgnsrekt/vox/tts/engines/voicevox"
)

// piperProbe caches the runtime lookup so construction never pays for
// repeated PATH walks. Keyed by configured binary name.
var piperProbe = struct {
	sync.Mutex
	cache map[string]piper.Runtime
}{cache: make(map[string]piper.Runtime)}

// ProbePiper resolves the piper runtime once per binary name for the
// lifetime of the process.
func ProbePiper(binary string) piper.Runtime {
	piperProbe.Lock()
	defer piperProbe.Unlock()

	if rt, ok := piperProbe.cache[binary]; ok {
		return rt
	}
	rt := piper.Probe(binary)
	piperProbe.cache[binary] = rt
	return rt
}

// New constructs the engine named by cfg.Engine. Construction failures
// are *tts.ConfigError; an unknown name is tts.ErrUnknownEngine.
func New(cfg tts.Config) (tts.Engine, error) {
	return NewNamed(cfg.Engine, cfg)
}

// NewNamed constructs a specific engine regardless of cfg.Engine, which
// lets callers build fallback chains from one configuration.
func NewNamed(name string, cfg tts.Config) (tts.Engine, error) {
	switch name {
	case "mock":
		return mock.New(cfg.Mock, cfg.CacheDir), nil
	case "cartesia":
		return cartesia.New(cfg.Cartesia, cfg.CacheDir)
	case "piper":
		return piper.New(cfg.Piper, cfg.CacheDir, ProbePiper(cfg.Piper.Binary))
	case "voicevox":
		return voicevox.New(cfg.Voicevox, cfg.CacheDir)
	default:
		return nil, fmt.Errorf("%w: %q", tts.ErrUnknownEngine, name)
	}
}

// Available reports whether the named engine could be constructed from
// the given configuration, without keeping the instance.
func Available(name string, cfg tts.Config) bool {
	switch name {
	case "mock":
		return true
	case "cartesia":
		return cfg.Cartesia.APIKey != ""
	case "piper":
		return ProbePiper(cfg.Piper.Binary).Available() && cfg.Piper.ModelPath != ""
	case "voicevox":
		return cfg.Voicevox.BaseURL != ""
	default:
		return false
	}
}
