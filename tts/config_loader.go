package tts

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads TTS configuration from Viper, then applies
// environment overrides and validates the result. Precedence: defaults,
// config file, environment.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("engine") {
		cfg.Engine = viper.GetString("engine")
	}
	if viper.IsSet("cache_dir") {
		cfg.CacheDir = viper.GetString("cache_dir")
	}

	loadCartesiaConfig(&cfg.Cartesia)
	loadPiperConfig(&cfg.Piper)
	loadVoicevoxConfig(&cfg.Voicevox)

	if viper.IsSet("mock.generation_delay") {
		cfg.Mock.GenerationDelay = viper.GetDuration("mock.generation_delay")
	}

	// Environment variables win over the config file.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse environment config: %w", err)
	}

	if err := expandPaths(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

func loadCartesiaConfig(c *CartesiaConfig) {
	if viper.IsSet("cartesia.api_key") {
		c.APIKey = viper.GetString("cartesia.api_key")
	}
	if viper.IsSet("cartesia.base_url") {
		c.BaseURL = viper.GetString("cartesia.base_url")
	}
	if viper.IsSet("cartesia.voice_id") {
		c.VoiceID = viper.GetString("cartesia.voice_id")
	}
	if viper.IsSet("cartesia.model_id") {
		c.ModelID = viper.GetString("cartesia.model_id")
	}
	if viper.IsSet("cartesia.language") {
		c.Language = viper.GetString("cartesia.language")
	}
	if viper.IsSet("cartesia.emotion") {
		c.Emotion = viper.GetString("cartesia.emotion")
	}
	if viper.IsSet("cartesia.format") {
		c.Format = viper.GetString("cartesia.format")
	}
	if viper.IsSet("cartesia.volume") {
		c.Volume = viper.GetFloat64("cartesia.volume")
	}
	if viper.IsSet("cartesia.speed") {
		c.Speed = viper.GetFloat64("cartesia.speed")
	}
	if viper.IsSet("cartesia.requests_per_second") {
		c.RequestsPerSecond = viper.GetFloat64("cartesia.requests_per_second")
	}
	if viper.IsSet("cartesia.timeout") {
		c.Timeout = viper.GetDuration("cartesia.timeout")
	}
}

func loadPiperConfig(c *PiperConfig) {
	if viper.IsSet("piper.binary") {
		c.Binary = viper.GetString("piper.binary")
	}
	if viper.IsSet("piper.model_path") {
		c.ModelPath = viper.GetString("piper.model_path")
	}
	if viper.IsSet("piper.speaker_id") {
		c.SpeakerID = viper.GetInt("piper.speaker_id")
	}
	if viper.IsSet("piper.length_scale") {
		c.LengthScale = viper.GetFloat64("piper.length_scale")
	}
	if viper.IsSet("piper.noise_scale") {
		c.NoiseScale = viper.GetFloat64("piper.noise_scale")
	}
	if viper.IsSet("piper.noise_w") {
		c.NoiseW = viper.GetFloat64("piper.noise_w")
	}
	if viper.IsSet("piper.volume") {
		c.Volume = viper.GetFloat64("piper.volume")
	}
	if viper.IsSet("piper.normalize_audio") {
		c.NormalizeAudio = viper.GetBool("piper.normalize_audio")
	}
	if viper.IsSet("piper.use_cuda") {
		c.UseCUDA = viper.GetBool("piper.use_cuda")
	}
	if viper.IsSet("piper.timeout") {
		c.Timeout = viper.GetDuration("piper.timeout")
	}
}

func loadVoicevoxConfig(c *VoicevoxConfig) {
	if viper.IsSet("voicevox.base_url") {
		c.BaseURL = viper.GetString("voicevox.base_url")
	}
	if viper.IsSet("voicevox.speaker_id") {
		c.SpeakerID = viper.GetInt("voicevox.speaker_id")
	}
	if viper.IsSet("voicevox.pitch") {
		c.Pitch = viper.GetFloat64("voicevox.pitch")
	}
	if viper.IsSet("voicevox.speed") {
		c.Speed = viper.GetFloat64("voicevox.speed")
	}
	if viper.IsSet("voicevox.intonation") {
		c.Intonation = viper.GetFloat64("voicevox.intonation")
	}
	if viper.IsSet("voicevox.volume") {
		c.Volume = viper.GetFloat64("voicevox.volume")
	}
	if viper.IsSet("voicevox.timeout") {
		c.Timeout = viper.GetDuration("voicevox.timeout")
	}
}

// expandPaths expands a leading ~ in filesystem paths.
func expandPaths(cfg *Config) error {
	var err error
	if cfg.CacheDir, err = homedir.Expand(cfg.CacheDir); err != nil {
		return fmt.Errorf("unable to expand cache_dir: %w", err)
	}
	if cfg.Piper.ModelPath != "" {
		if cfg.Piper.ModelPath, err = homedir.Expand(cfg.Piper.ModelPath); err != nil {
			return fmt.Errorf("unable to expand piper model_path: %w", err)
		}
	}
	return nil
}
