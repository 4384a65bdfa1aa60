// Package piper provides the Piper local-model TTS engine. Synthesis runs
// through the piper runtime against an ONNX voice model on disk.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/vox/tts"
)

// Runtime describes the availability of the piper executable. It is
// resolved once at process start (see engines.ProbePiper) and injected
// here, rather than probed again on every construction.
type Runtime struct {
	// Path is the resolved executable path; empty when piper is not
	// installed.
	Path string
}

// Available reports whether the runtime was found.
func (r Runtime) Available() bool { return r.Path != "" }

// Probe resolves the piper executable. Absolute paths are checked on
// disk, bare names on PATH.
func Probe(binary string) Runtime {
	if strings.ContainsRune(binary, os.PathSeparator) {
		if _, err := os.Stat(binary); err != nil {
			return Runtime{}
		}
		return Runtime{Path: binary}
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return Runtime{}
	}
	return Runtime{Path: path}
}

// Engine implements the TTS engine contract using a local Piper voice
// model. The model is validated and the synthesis parameters are built
// once at construction.
//
// Concurrent GenerateAudio calls against one Engine are not safe unless
// the caller serializes them; the runtime gives no such guarantee.
type Engine struct {
	cfg     tts.PiperConfig
	runtime Runtime
	namer   tts.CacheNamer
	args    []string // pre-built synthesis parameters
}

// New creates a Piper engine. A missing runtime or a missing model file
// is a fatal configuration error surfaced here, not at first synthesis.
func New(cfg tts.PiperConfig, cacheDir string, runtime Runtime) (*Engine, error) {
	if !runtime.Available() {
		return nil, tts.NewConfigError("piper",
			fmt.Errorf("piper runtime %q not found: install piper-tts or set piper.binary", cfg.Binary))
	}

	if cfg.ModelPath == "" {
		return nil, tts.NewConfigError("piper", errors.New("model path is required"))
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, tts.NewConfigError("piper", fmt.Errorf("model not found: %w", err))
	}

	e := &Engine{
		cfg:     cfg,
		runtime: runtime,
		namer:   tts.CacheNamer{Dir: cacheDir, Ext: tts.ExtWav},
		args:    synthesisArgs(cfg),
	}

	log.Info("Piper engine initialized", "model", cfg.ModelPath, "runtime", runtime.Path)
	return e, nil
}

// synthesisArgs builds the reusable parameter set passed to the runtime
// on every call.
func synthesisArgs(cfg tts.PiperConfig) []string {
	args := []string{
		"--model", cfg.ModelPath,
		"--speaker", strconv.Itoa(cfg.SpeakerID),
		"--length-scale", formatScale(cfg.LengthScale),
		"--noise-scale", formatScale(cfg.NoiseScale),
		"--noise-w", formatScale(cfg.NoiseW),
		"--volume", formatScale(cfg.Volume),
	}
	if !cfg.NormalizeAudio {
		args = append(args, "--no-normalize")
	}
	if cfg.UseCUDA {
		args = append(args, "--cuda")
	}
	return args
}

func formatScale(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return "piper" }

// GenerateAudio synthesizes text into a wav file at the derived path. The
// runtime writes the waveform container itself; on failure the error is
// returned tagged and no retry is attempted.
func (e *Engine) GenerateAudio(ctx context.Context, text, stem string) (string, error) {
	if text == "" {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureRequest, tts.ErrEmptyText)
	}

	if err := e.namer.EnsureDir(); err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite, err)
	}
	path := e.namer.FileName(stem)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.args...), "--output-file", path)
	cmd := exec.CommandContext(ctx, e.runtime.Path, args...)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debug("Generating audio via Piper", "text", tts.Excerpt(text, 50), "model", e.cfg.ModelPath)

	if err := cmd.Run(); err != nil {
		kind := tts.FailureRequest
		if ctx.Err() != nil {
			kind = tts.FailureCanceled
		}
		return "", tts.NewSynthesisError(e.Name(), kind,
			fmt.Errorf("piper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String())))
	}

	// The runtime exiting cleanly without producing output is a write
	// failure, not a silent success.
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite,
			fmt.Errorf("piper produced no output at %s", path))
	}

	log.Info("Generated audio file via Piper", "path", path)
	return path, nil
}
