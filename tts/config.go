package tts

import (
	"fmt"
	"strings"
	"time"
)

// Config contains all TTS configuration options.
type Config struct {
	// Engine selects the active backend: cartesia, piper, voicevox, or mock.
	Engine string `yaml:"engine" env:"VOX_ENGINE"`

	// CacheDir is where generated audio files are written.
	CacheDir string `yaml:"cache_dir" env:"VOX_CACHE_DIR"`

	// Engine-specific configurations
	Cartesia CartesiaConfig `yaml:"cartesia" envPrefix:"VOX_CARTESIA_"`
	Piper    PiperConfig    `yaml:"piper" envPrefix:"VOX_PIPER_"`
	Voicevox VoicevoxConfig `yaml:"voicevox" envPrefix:"VOX_VOICEVOX_"`
	Mock     MockConfig     `yaml:"mock" envPrefix:"VOX_MOCK_"`
}

// CartesiaConfig contains Cartesia cloud engine settings.
type CartesiaConfig struct {
	APIKey   string `yaml:"api_key" env:"API_KEY"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	VoiceID  string `yaml:"voice_id" env:"VOICE_ID"`
	ModelID  string `yaml:"model_id" env:"MODEL_ID"`
	Language string `yaml:"language" env:"LANGUAGE"`
	Emotion  string `yaml:"emotion" env:"EMOTION"`

	// Format is the output container: wav or mp3.
	Format string  `yaml:"format" env:"FORMAT"`
	Volume float64 `yaml:"volume" env:"VOLUME"`
	Speed  float64 `yaml:"speed" env:"SPEED"`

	// RequestsPerSecond caps outbound API calls; 0 disables the limiter.
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// PiperConfig contains Piper local-model engine settings.
type PiperConfig struct {
	// Binary is the piper runtime executable; resolved on PATH when bare.
	Binary string `yaml:"binary" env:"BINARY"`
	// ModelPath points at the ONNX voice model on disk (required).
	ModelPath string `yaml:"model_path" env:"MODEL_PATH"`

	SpeakerID      int     `yaml:"speaker_id" env:"SPEAKER_ID"`
	LengthScale    float64 `yaml:"length_scale" env:"LENGTH_SCALE"`
	NoiseScale     float64 `yaml:"noise_scale" env:"NOISE_SCALE"`
	NoiseW         float64 `yaml:"noise_w" env:"NOISE_W"`
	Volume         float64 `yaml:"volume" env:"VOLUME"`
	NormalizeAudio bool    `yaml:"normalize_audio" env:"NORMALIZE_AUDIO"`
	UseCUDA        bool    `yaml:"use_cuda" env:"USE_CUDA"`

	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// VoicevoxConfig contains Voicevox HTTP-server engine settings.
type VoicevoxConfig struct {
	BaseURL   string `yaml:"base_url" env:"BASE_URL"`
	SpeakerID int    `yaml:"speaker_id" env:"SPEAKER_ID"`

	Pitch      float64 `yaml:"pitch" env:"PITCH"`
	Speed      float64 `yaml:"speed" env:"SPEED"`
	Intonation float64 `yaml:"intonation" env:"INTONATION"`
	Volume     float64 `yaml:"volume" env:"VOLUME"`

	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// MockConfig contains mock engine settings for testing.
type MockConfig struct {
	GenerationDelay time.Duration `yaml:"generation_delay" env:"GENERATION_DELAY"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:   "mock",
		CacheDir: "cache",
		Cartesia: DefaultCartesiaConfig(),
		Piper:    DefaultPiperConfig(),
		Voicevox: DefaultVoicevoxConfig(),
		Mock:     MockConfig{},
	}
}

// DefaultCartesiaConfig returns default Cartesia configuration.
func DefaultCartesiaConfig() CartesiaConfig {
	return CartesiaConfig{
		BaseURL:  "https://api.cartesia.ai",
		VoiceID:  "6ccbfb76-1fc6-48f7-b71d-91ac6298247b",
		ModelID:  "sonic-3",
		Language: "en",
		Emotion:  "neutral",
		Format:   ExtWav,
		Volume:   1.0,
		Speed:    1.0,
		Timeout:  30 * time.Second,
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	return PiperConfig{
		Binary:         "piper",
		SpeakerID:      0,
		LengthScale:    1.0,
		NoiseScale:     0.667,
		NoiseW:         0.8,
		Volume:         1.0,
		NormalizeAudio: true,
		Timeout:        30 * time.Second,
	}
}

// DefaultVoicevoxConfig returns default Voicevox configuration.
func DefaultVoicevoxConfig() VoicevoxConfig {
	return VoicevoxConfig{
		BaseURL:    "http://127.0.0.1:50021",
		SpeakerID:  8,
		Pitch:      0.0,
		Speed:      1.0,
		Intonation: 1.0,
		Volume:     1.0,
		Timeout:    30 * time.Second,
	}
}

// Engines lists the valid engine names.
func Engines() []string {
	return []string{"mock", "cartesia", "piper", "voicevox"}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	engineValid := false
	for _, e := range Engines() {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = strings.ToLower(c.Engine)
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("invalid TTS engine '%s': must be one of %v", c.Engine, Engines())
	}

	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir cannot be empty")
	}

	switch c.Engine {
	case "cartesia":
		if err := c.Cartesia.Validate(); err != nil {
			return fmt.Errorf("cartesia config: %w", err)
		}
	case "piper":
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case "voicevox":
		if err := c.Voicevox.Validate(); err != nil {
			return fmt.Errorf("voicevox config: %w", err)
		}
	}

	return nil
}

// Validate checks if the Cartesia configuration is valid. Ranges follow
// the vendor's documented limits.
func (c *CartesiaConfig) Validate() error {
	if c.Format != ExtWav && c.Format != ExtMP3 {
		return fmt.Errorf("format must be %q or %q, got %q", ExtWav, ExtMP3, c.Format)
	}

	if c.Volume < 0.5 || c.Volume > 2.0 {
		return fmt.Errorf("volume must be between 0.5 and 2.0, got %f", c.Volume)
	}

	if c.Speed < 0.6 || c.Speed > 1.5 {
		return fmt.Errorf("speed must be between 0.6 and 1.5, got %f", c.Speed)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}

	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("piper binary path cannot be empty")
	}

	if c.ModelPath == "" {
		return fmt.Errorf("piper model path cannot be empty")
	}

	if c.LengthScale < 0.1 || c.LengthScale > 3.0 {
		return fmt.Errorf("length_scale must be between 0.1 and 3.0, got %f", c.LengthScale)
	}

	if c.NoiseScale < 0 || c.NoiseScale > 2.0 {
		return fmt.Errorf("noise_scale must be between 0.0 and 2.0, got %f", c.NoiseScale)
	}

	if c.NoiseW < 0 || c.NoiseW > 2.0 {
		return fmt.Errorf("noise_w must be between 0.0 and 2.0, got %f", c.NoiseW)
	}

	if c.Volume < 0 || c.Volume > 2.0 {
		return fmt.Errorf("volume must be between 0.0 and 2.0, got %f", c.Volume)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}

	return nil
}

// Validate checks if the Voicevox configuration is valid. Ranges follow
// the server's scale limits.
func (c *VoicevoxConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if c.Pitch < -0.15 || c.Pitch > 0.15 {
		return fmt.Errorf("pitch must be between -0.15 and 0.15, got %f", c.Pitch)
	}

	if c.Speed < 0.5 || c.Speed > 2.0 {
		return fmt.Errorf("speed must be between 0.5 and 2.0, got %f", c.Speed)
	}

	if c.Intonation < 0 || c.Intonation > 2.0 {
		return fmt.Errorf("intonation must be between 0.0 and 2.0, got %f", c.Intonation)
	}

	if c.Volume < 0 || c.Volume > 2.0 {
		return fmt.Errorf("volume must be between 0.0 and 2.0, got %f", c.Volume)
	}

	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}

	return nil
}
