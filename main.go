// Package main provides the entry point for the vox CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/vox/tts"
	"github.com/dgnsrekt/vox/tts/engines"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	engineName string
	outStem    string
	cacheDir   string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "vox [TEXT]",
		Short: "Turn text into speech files, right from the CLI",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into %s with interchangeable TTS engines: Cartesia, Piper, Voicevox, and a mock for dry runs.", keyword("speech files")),
		),
		Example:          paragraph("vox \"hello there\"\nvox -e voicevox -o greet \"hello there\"\necho hello | vox -e piper"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// Config discovery has to wait until flags are parsed so an
			// explicit --config wins over the default search path.
			if err := readConfig(); err != nil {
				return err
			}
			if debug || viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		RunE: execute,
	}
)

// sourceText resolves the text to synthesize from the argument or stdin.
// An explicit "-" always reads stdin.
func sourceText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}

	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if !yes && len(args) == 0 {
		return "", errors.New("missing text: pass it as an argument or pipe it in")
	}

	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read from stdin: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", errors.New("missing text: stdin was empty")
	}
	return text, nil
}

func stdinIsPipe() (bool, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	text, err := sourceText(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := engines.New(cfg)
	if err != nil {
		return err
	}

	path, err := engine.GenerateAudio(cmd.Context(), text, outStem)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

// loadConfig builds the runtime configuration: defaults, then config
// file, then environment, then command-line flags.
func loadConfig(cmd *cobra.Command) (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineName
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	// Credentials commonly live in a local .env during development.
	_ = godotenv.Load()

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: vox.yml in the standard config directories)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "TTS engine (mock/cartesia/piper/voicevox)")
	rootCmd.Flags().StringVarP(&outStem, "out", "o", "", "output file name without extension (default: generated)")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for generated audio files")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("cache_dir", rootCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("engine", "mock")
	viper.SetDefault("cache_dir", "cache")

	rootCmd.AddCommand(configCmd, enginesCmd, cacheCmd, manCmd)
}

// readConfig points viper at the config file: the --config flag when
// given, otherwise the first vox.yml found in the standard locations.
func readConfig() error {
	scope := gap.NewScope(gap.User, "vox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return fmt.Errorf("could not find configuration directory: %w", err)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "vox")}, dirs...)
	}

	if c := os.Getenv("VOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("vox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("vox")
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "error", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}
	return nil
}
