package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/placelist-cli/internal/model"
)

var (
	resolveCategory string
	resolveScope    string
	resolveCity     string
	resolveState    string
	resolveRadius   int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a single place name against the directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, ok := model.ParseScope(resolveScope)
		if !ok {
			return eris.Errorf("invalid scope %q", resolveScope)
		}

		env, err := initResolver(cmd.Context(), "resolve")
		if err != nil {
			return err
		}
		defer env.Close()

		result := env.Resolver.Resolve(cmd.Context(), model.ResolutionQuery{
			Name:               args[0],
			CategoryHint:       resolveCategory,
			Scope:              scope,
			AnchorCity:         resolveCity,
			AnchorState:        resolveState,
			SearchRadiusMeters: resolveRadius,
		})

		out := struct {
			Result      *model.ResolutionResult `json:"result"`
			Publishable bool                    `json:"publishable"`
		}{
			Result:      result,
			Publishable: env.Resolver.IsPublishable(result),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveCategory, "category", "", "category hint (fort, temple, beach, ...)")
	resolveCmd.Flags().StringVar(&resolveScope, "scope", "", "query scope: destination, point_of_interest, natural_feature")
	resolveCmd.Flags().StringVar(&resolveCity, "city", "", "anchor city for the search")
	resolveCmd.Flags().StringVar(&resolveState, "state", "", "anchor state or region")
	resolveCmd.Flags().IntVar(&resolveRadius, "radius", 0, "search radius in meters (default from config)")
	rootCmd.AddCommand(resolveCmd)
}
