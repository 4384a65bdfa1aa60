package engines

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/vox/tts"
)

func testConfig(t *testing.T) tts.Config {
	t.Helper()
	cfg := tts.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	return cfg
}

func TestNewMock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine = "mock"

	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if engine.Name() != "mock" {
		t.Errorf("expected mock engine, got %q", engine.Name())
	}

	if _, err := engine.GenerateAudio(context.Background(), "hello", "out"); err != nil {
		t.Errorf("GenerateAudio failed: %v", err)
	}
}

func TestNewUnknownEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine = "festival"

	_, err := New(cfg)
	if !errors.Is(err, tts.ErrUnknownEngine) {
		t.Errorf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestNewCartesiaWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine = "cartesia"

	_, err := New(cfg)
	var ce *tts.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a ConfigError, got %v", err)
	}
}

func TestNewNamedIgnoresActiveEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine = "cartesia"

	engine, err := NewNamed("mock", cfg)
	if err != nil {
		t.Fatalf("NewNamed failed: %v", err)
	}
	if engine.Name() != "mock" {
		t.Errorf("expected mock engine, got %q", engine.Name())
	}
}

func TestNewVoicevox(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine = "voicevox"

	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if engine.Name() != "voicevox" {
		t.Errorf("expected voicevox engine, got %q", engine.Name())
	}
}

func TestAvailable(t *testing.T) {
	cfg := testConfig(t)

	if !Available("mock", cfg) {
		t.Error("mock must always be available")
	}
	if Available("cartesia", cfg) {
		t.Error("cartesia must be unavailable without an api key")
	}
	cfg.Cartesia.APIKey = "sk-test"
	if !Available("cartesia", cfg) {
		t.Error("cartesia must be available with an api key")
	}

	if !Available("voicevox", cfg) {
		t.Error("voicevox must be available with a base url")
	}

	cfg.Piper.Binary = "definitely-not-a-real-binary-name"
	if Available("piper", cfg) {
		t.Error("piper must be unavailable without the runtime")
	}

	if Available("festival", cfg) {
		t.Error("unknown engines are never available")
	}
}

func TestProbePiperCaches(t *testing.T) {
	first := ProbePiper("definitely-not-a-real-binary-name")
	second := ProbePiper("definitely-not-a-real-binary-name")

	if first != second {
		t.Errorf("expected cached probe results to match: %+v vs %+v", first, second)
	}
	if first.Available() {
		t.Error("expected an unavailable runtime for an unknown binary")
	}
}
