package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/placelist-cli/internal/batch"
	"github.com/sells-group/placelist-cli/internal/model"
)

var (
	batchKeepRatio     float64
	batchMinConfidence float64
	batchRequirePhoto  bool
	batchRefreshPhotos bool
	batchAnchorCity    string
	batchAnchorState   string
	batchConcurrency   int
)

var batchCmd = &cobra.Command{
	Use:   "batch <input> <output>",
	Short: "Resolve and curate a playlist file",
	Long:  "Reads playlist groups from a JSON or YAML file, resolves every item, curates each group's publishable subset, and writes the transformed file.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flag overrides land in cfg before validation so bad values fail
		// the same way bad config does.
		if cmd.Flags().Changed("keep-ratio") {
			cfg.Curate.KeepRatio = batchKeepRatio
		}
		if cmd.Flags().Changed("min-confidence") {
			cfg.Resolver.MinConfidence = batchMinConfidence
		}
		if cmd.Flags().Changed("require-photo") {
			cfg.Resolver.RequirePhoto = batchRequirePhoto
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Batch.GroupConcurrency = batchConcurrency
		}
		if cmd.Flags().Changed("refresh-photos") {
			cfg.Resolver.RefreshPhotos = batchRefreshPhotos
		}

		scope, ok := model.ParseScope(cfg.Batch.DefaultScope)
		if !ok {
			return eris.Errorf("invalid batch.default_scope %q", cfg.Batch.DefaultScope)
		}

		env, err := initResolver(cmd.Context(), "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		playlists, err := batch.Load(args[0])
		if err != nil {
			return err
		}

		tr := &batch.Transformer{
			Resolver:            env.Resolver,
			ResolverCfg:         resolverConfig(),
			CurateCfg:           curateConfig(),
			AnchorCityOverride:  batchAnchorCity,
			AnchorStateOverride: batchAnchorState,
			DefaultScope:        scope,
			GroupConcurrency:    cfg.Batch.GroupConcurrency,
		}

		out, err := tr.Run(cmd.Context(), playlists)
		if err != nil {
			return err
		}

		if err := batch.Write(args[1], out); err != nil {
			return err
		}

		zap.L().Info("batch output written",
			zap.String("path", args[1]),
			zap.Int("playlists", len(out)),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().Float64Var(&batchKeepRatio, "keep-ratio", 0, "fraction of each group to keep after ranking")
	batchCmd.Flags().Float64Var(&batchMinConfidence, "min-confidence", 0, "publishability confidence floor")
	batchCmd.Flags().BoolVar(&batchRequirePhoto, "require-photo", false, "require a photo reference for publishability")
	batchCmd.Flags().BoolVar(&batchRefreshPhotos, "refresh-photos", false, "backfill photos on photo-less cache hits")
	batchCmd.Flags().StringVar(&batchAnchorCity, "anchor-city", "", "override every group's anchor city")
	batchCmd.Flags().StringVar(&batchAnchorState, "anchor-state", "", "override every group's anchor state")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent playlist groups")
	rootCmd.AddCommand(batchCmd)
}
