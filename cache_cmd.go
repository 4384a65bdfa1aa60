package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/vox/internal/cache"
	"github.com/dgnsrekt/vox/tts"
)

var (
	pruneMaxAge  time.Duration
	pruneMaxSize string

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Show stats for the audio cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := tts.LoadConfigFromViper()
			if err != nil {
				return err
			}

			stats, err := cache.Collect(cfg.CacheDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache directory: %s\n", stats.Dir)
			fmt.Fprintf(out, "Files:           %d\n", stats.Entries)
			fmt.Fprintf(out, "Total size:      %s\n", humanize.Bytes(uint64(stats.TotalBytes))) //nolint:gosec
			if stats.Entries > 0 {
				fmt.Fprintf(out, "Oldest:          %s\n", humanize.Time(stats.Oldest))
				fmt.Fprintf(out, "Newest:          %s\n", humanize.Time(stats.Newest))
			}
			return nil
		},
	}

	cacheCleanCmd = &cobra.Command{
		Use:     "clean",
		Short:   "Remove old files from the audio cache",
		Example: paragraph("vox cache clean --max-age 168h\nvox cache clean --max-size 100MB"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := tts.LoadConfigFromViper()
			if err != nil {
				return err
			}

			var maxBytes int64
			if pruneMaxSize != "" {
				b, err := humanize.ParseBytes(pruneMaxSize)
				if err != nil {
					return fmt.Errorf("invalid --max-size: %w", err)
				}
				maxBytes = int64(b) //nolint:gosec
			}

			var removed int
			var reclaimed int64
			if pruneMaxAge == 0 && maxBytes == 0 {
				removed, reclaimed, err = cache.Clear(cfg.CacheDir)
			} else {
				removed, reclaimed, err = cache.Prune(cfg.CacheDir, pruneMaxAge, maxBytes)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files (%s)\n",
				removed, humanize.Bytes(uint64(reclaimed))) //nolint:gosec
			return nil
		},
	}
)

func init() {
	cacheCleanCmd.Flags().DurationVar(&pruneMaxAge, "max-age", 0, "remove files older than this (e.g. 168h)")
	cacheCleanCmd.Flags().StringVar(&pruneMaxSize, "max-size", "", "shrink the cache to this total size (e.g. 100MB)")
	cacheCmd.AddCommand(cacheCleanCmd)
}
