package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the resolution cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print resolution cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initResolver(cmd.Context(), "cache")
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var backfillLimit int

var cacheBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fetch photo references for cached entries that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initResolver(cmd.Context(), "cache")
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := env.Store.ListPhotoless(cmd.Context(), backfillLimit)
		if err != nil {
			return err
		}

		var updated int
		for _, entry := range entries {
			if env.Resolver.BackfillPhotos(cmd.Context(), entry.Key, entry.Result) {
				updated++
			}
		}

		zap.L().Info("photo backfill complete",
			zap.Int("scanned", len(entries)),
			zap.Int("updated", updated),
		)
		return nil
	},
}

func init() {
	cacheBackfillCmd.Flags().IntVar(&backfillLimit, "limit", 100, "max photo-less entries to scan")
	cacheCmd.AddCommand(cacheStatsCmd, cacheBackfillCmd)
	rootCmd.AddCommand(cacheCmd)
}
