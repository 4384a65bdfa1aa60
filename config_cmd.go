package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# TTS engine: mock, cartesia, piper, or voicevox
engine: "mock"
# directory for generated audio files
cache_dir: "cache"

# Cartesia cloud engine configuration
cartesia:
  # api_key: "your-api-key-here"   # or set VOX_CARTESIA_API_KEY
  voice_id: "6ccbfb76-1fc6-48f7-b71d-91ac6298247b"
  model_id: "sonic-3"
  language: "en"
  emotion: "neutral"
  # output container: wav or mp3
  format: "wav"
  volume: 1.0
  speed: 1.0
  # client-side request cap; 0 disables
  requests_per_second: 0
  timeout: "30s"

# Piper local-model engine configuration
piper:
  binary: "piper"
  # model_path: "~/models/piper/en_US-lessac-medium.onnx"
  speaker_id: 0
  length_scale: 1.0
  noise_scale: 0.667
  noise_w: 0.8
  volume: 1.0
  normalize_audio: true
  use_cuda: false
  timeout: "30s"

# Voicevox HTTP-server engine configuration
voicevox:
  base_url: "http://127.0.0.1:50021"
  speaker_id: 8
  pitch: 0.0
  speed: 1.0
  intonation: 1.0
  volume: 1.0
  timeout: "30s"

# Mock engine configuration (for testing)
mock:
  generation_delay: "0s"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the vox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the vox config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("vox config\nvox config --config path/to/vox.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Vox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if configFile == "" {
			scope := gap.NewScope(gap.User, "vox")
			p, err := scope.ConfigPath("vox.yml")
			if err != nil {
				return fmt.Errorf("unable to determine config path: %w", err)
			}
			configFile = p
		}
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
