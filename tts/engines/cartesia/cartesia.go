// Package cartesia provides the Cartesia cloud TTS engine.
//
// API reference: https://docs.cartesia.ai/api-reference/tts/bytes
package cartesia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/vox/tts"
	"golang.org/x/time/rate"
)

const apiVersion = "2025-04-16"

// outputFormat describes the container and encoding requested from the
// API. The two variants mirror the configured wav/mp3 choice.
type outputFormat struct {
	Container  string `json:"container"`
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding,omitempty"`
	BitRate    int    `json:"bit_rate,omitempty"`
}

var (
	wavOutputFormat = outputFormat{Container: "wav", SampleRate: 44100, Encoding: "pcm_f32le"}
	mp3OutputFormat = outputFormat{Container: "mp3", SampleRate: 44100, BitRate: 128000}
)

// synthesisRequest is the wire shape of a /tts/bytes call.
type synthesisRequest struct {
	OutputFormat     outputFormat     `json:"output_format"`
	ModelID          string           `json:"model_id"`
	Transcript       string           `json:"transcript"`
	Language         string           `json:"language"`
	GenerationConfig generationConfig `json:"generation_config"`
	Voice            voiceSelector    `json:"voice"`
}

type generationConfig struct {
	Volume  float64 `json:"volume"`
	Speed   float64 `json:"speed"`
	Emotion string  `json:"emotion"`
}

type voiceSelector struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

// Engine implements the TTS engine contract against the Cartesia API.
// Safe for concurrent GenerateAudio calls.
type Engine struct {
	cfg     tts.CartesiaConfig
	namer   tts.CacheNamer
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Cartesia engine. A missing API key is a configuration
// error; the HTTP client is built once and reused for every call.
func New(cfg tts.CartesiaConfig, cacheDir string) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, tts.NewConfigError("cartesia", errors.New("api key is required"))
	}
	if cfg.Format != tts.ExtWav && cfg.Format != tts.ExtMP3 {
		return nil, tts.NewConfigError("cartesia", fmt.Errorf("unsupported output format %q", cfg.Format))
	}

	e := &Engine{
		cfg:    cfg,
		namer:  tts.CacheNamer{Dir: cacheDir, Ext: cfg.Format},
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	log.Debug("Cartesia engine initialized", "voice", cfg.VoiceID, "model", cfg.ModelID)
	return e, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return "cartesia" }

// GenerateAudio synthesizes text via the Cartesia API and streams the
// response into the target file. A failure during the request or the
// write removes any partially written file before the error is returned.
func (e *Engine) GenerateAudio(ctx context.Context, text, stem string) (string, error) {
	if text == "" {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureRequest, tts.ErrEmptyText)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", tts.NewSynthesisError(e.Name(), tts.FailureCanceled, err)
		}
	}

	if err := e.namer.EnsureDir(); err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite, err)
	}
	path := e.namer.FileName(stem)

	format := wavOutputFormat
	if e.cfg.Format == tts.ExtMP3 {
		format = mp3OutputFormat
	}

	body, err := json.Marshal(synthesisRequest{
		OutputFormat: format,
		ModelID:      e.cfg.ModelID,
		Transcript:   text,
		Language:     e.cfg.Language,
		GenerationConfig: generationConfig{
			Volume:  e.cfg.Volume,
			Speed:   e.cfg.Speed,
			Emotion: e.cfg.Emotion,
		},
		Voice: voiceSelector{Mode: "id", ID: e.cfg.VoiceID},
	})
	if err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", e.cfg.APIKey)
	req.Header.Set("Cartesia-Version", apiVersion)

	log.Debug("Generating audio via Cartesia",
		"text", tts.Excerpt(text, 50),
		"voice", e.cfg.VoiceID,
		"model", e.cfg.ModelID)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", tts.NewSynthesisError(e.Name(), requestKind(ctx, err), err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", tts.NewSynthesisError(e.Name(), tts.FailureServer,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail))
	}

	out, err := os.Create(path)
	if err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite, err)
	}
	if err := copyStream(out, resp.Body); err != nil {
		e.removePartial(path)
		return "", tts.NewSynthesisError(e.Name(), requestKind(ctx, err), err)
	}

	log.Info("Generated audio file via Cartesia", "path", path)
	return path, nil
}

// copyStream copies the response chunks sequentially into the file and
// closes it.
func copyStream(f *os.File, r io.Reader) error {
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// removePartial deletes an incomplete output file. A removal failure is
// logged separately so it never masks the original error.
func (e *Engine) removePartial(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Error("Could not remove incomplete audio file", "path", path, "error", err)
	}
}

// requestKind maps an in-flight error to a failure kind, distinguishing
// caller cancellation from provider trouble.
func requestKind(ctx context.Context, err error) tts.FailureKind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return tts.FailureCanceled
	}
	return tts.FailureRequest
}
