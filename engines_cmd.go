package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/vox/tts"
	"github.com/dgnsrekt/vox/tts/engines"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List TTS engines and their availability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := tts.LoadConfigFromViper()
		if err != nil {
			return err
		}

		for _, name := range tts.Engines() {
			status := subtle("unavailable")
			if engines.Available(name, cfg) {
				status = keyword("available")
			}
			active := "  "
			if name == cfg.Engine {
				active = "* "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%-10s %s\n", active, name, status)
		}
		return nil
	},
}
