// Package voicevox provides the Voicevox HTTP-server TTS engine.
//
// Synthesis is a two-step protocol: POST /audio_query builds a query
// object from the text, POST /synthesis renders that query into audio.
package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/vox/tts"
)

// AudioQuery is the query object returned by /audio_query. It is kept as
// a generic map so server fields this engine does not know about survive
// the round trip unchanged.
type AudioQuery map[string]any

// applyScales returns a copy of the query with the four configured
// prosody scales applied. The input is never mutated.
func applyScales(query AudioQuery, cfg tts.VoicevoxConfig) AudioQuery {
	out := make(AudioQuery, len(query)+4)
	for k, v := range query {
		out[k] = v
	}
	out["speedScale"] = cfg.Speed
	out["pitchScale"] = cfg.Pitch
	out["intonationScale"] = cfg.Intonation
	out["volumeScale"] = cfg.Volume
	return out
}

// Engine implements the TTS engine contract against a Voicevox server.
// Safe for concurrent GenerateAudio calls.
type Engine struct {
	cfg    tts.VoicevoxConfig
	namer  tts.CacheNamer
	client *http.Client
}

// New creates a Voicevox engine and ensures the cache directory exists.
func New(cfg tts.VoicevoxConfig, cacheDir string) (*Engine, error) {
	if cfg.BaseURL == "" {
		return nil, tts.NewConfigError("voicevox", errors.New("base url is required"))
	}

	e := &Engine{
		cfg:    cfg,
		namer:  tts.CacheNamer{Dir: cacheDir, Ext: tts.ExtWav},
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if err := e.namer.EnsureDir(); err != nil {
		return nil, tts.NewConfigError("voicevox", err)
	}

	log.Debug("Voicevox engine initialized", "url", cfg.BaseURL, "speaker", cfg.SpeakerID)
	return e, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return "voicevox" }

// GenerateAudio synthesizes text through the audio_query/synthesis
// round trip and writes the returned bytes verbatim to the target file.
func (e *Engine) GenerateAudio(ctx context.Context, text, stem string) (string, error) {
	if text == "" {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureRequest, tts.ErrEmptyText)
	}
	path := e.namer.FileName(stem)

	log.Debug("Generating audio via Voicevox", "text", tts.Excerpt(text, 50), "speaker", e.cfg.SpeakerID)

	query, err := e.audioQuery(ctx, text)
	if err != nil {
		return "", err
	}

	audio, err := e.synthesis(ctx, applyScales(query, e.cfg))
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", tts.NewSynthesisError(e.Name(), tts.FailureWrite, err)
	}

	log.Info("Generated audio file via Voicevox", "path", path)
	return path, nil
}

// audioQuery runs step one: build the query object from text and speaker.
func (e *Engine) audioQuery(ctx context.Context, text string) (AudioQuery, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(e.cfg.SpeakerID))

	resp, err := e.post(ctx, "/audio_query", params, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := checkStatus(resp); err != nil {
		return nil, tts.NewSynthesisError(e.Name(), tts.FailureServer, err)
	}

	var query AudioQuery
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, tts.NewSynthesisError(e.Name(), tts.FailureDecode,
			fmt.Errorf("malformed audio query: %w", err))
	}
	return query, nil
}

// synthesis runs step two: render the scaled query into audio bytes.
func (e *Engine) synthesis(ctx context.Context, query AudioQuery) ([]byte, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, tts.NewSynthesisError(e.Name(), tts.FailureRequest, err)
	}

	params := url.Values{}
	params.Set("speaker", strconv.Itoa(e.cfg.SpeakerID))

	resp, err := e.post(ctx, "/synthesis", params, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := checkStatus(resp); err != nil {
		return nil, tts.NewSynthesisError(e.Name(), tts.FailureServer, err)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.NewSynthesisError(e.Name(), tts.FailureDecode, err)
	}
	return audio, nil
}

func (e *Engine) post(ctx context.Context, endpoint string, params url.Values, body []byte) (*http.Response, error) {
	u := e.cfg.BaseURL + endpoint + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, reader)
	if err != nil {
		return nil, tts.NewSynthesisError(e.Name(), tts.FailureRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		kind := tts.FailureRequest
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = tts.FailureCanceled
		}
		return nil, tts.NewSynthesisError(e.Name(), kind, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
}
