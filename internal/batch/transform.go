// Package batch implements the resolve-and-curate file transform over
// playlist groups of scraped place mentions.
package batch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/placelist-cli/internal/curate"
	"github.com/sells-group/placelist-cli/internal/model"
	"github.com/sells-group/placelist-cli/internal/resolver"
)

// placeResolver is the resolution surface the transform needs; satisfied by
// *resolver.Resolver and mockable in tests.
type placeResolver interface {
	Resolve(ctx context.Context, q model.ResolutionQuery) *model.ResolutionResult
}

// Transformer resolves every item in each playlist group sequentially, then
// curates the publishable subset per group.
type Transformer struct {
	Resolver    placeResolver
	ResolverCfg resolver.Config
	CurateCfg   curate.Config

	// AnchorCityOverride/AnchorStateOverride replace the group anchors for
	// every item when set.
	AnchorCityOverride  string
	AnchorStateOverride string

	// DefaultScope applies to groups that don't declare their own.
	DefaultScope model.Scope

	// GroupConcurrency bounds how many groups are processed at once.
	// Items within a group are always sequential. Default 1.
	GroupConcurrency int
}

// Run transforms all playlist groups and tags the output with a run ID for
// log correlation. Individual resolution failures never abort the run.
func (t *Transformer) Run(ctx context.Context, playlists []model.Playlist) ([]model.ResolvedPlaylist, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("starting batch transform", zap.Int("playlists", len(playlists)))

	out := make([]model.ResolvedPlaylist, len(playlists))

	g, gctx := errgroup.WithContext(ctx)
	concurrency := t.GroupConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i := range playlists {
		g.Go(func() error {
			out[i] = t.transformGroup(gctx, log, playlists[i], runID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("batch transform complete", zap.Int("playlists", len(out)))
	return out, nil
}

func (t *Transformer) transformGroup(ctx context.Context, log *zap.Logger, pl model.Playlist, runID string) model.ResolvedPlaylist {
	city, state := t.anchors(pl)
	scope := pl.Scope
	if scope == "" {
		scope = t.DefaultScope
	}

	resolved := make([]model.ResolvedItem, len(pl.Items))
	var publishable []*model.ResolutionResult
	itemIndex := map[*model.ResolutionResult]int{}

	for i, item := range pl.Items {
		q := model.ResolutionQuery{
			Name:               item.Name,
			CategoryHint:       item.CategoryHint,
			Scope:              scope,
			AnchorCity:         city,
			AnchorState:        state,
			ContextDescription: item.Description,
		}
		if q.AnchorCity == "" {
			q.AnchorCity = item.LocationHint
		}

		res := t.Resolver.Resolve(ctx, q)
		resolved[i] = model.ResolvedItem{
			RawItem: item,
			Result:  res,
			Status:  model.StatusUnresolved,
		}

		if t.ResolverCfg.IsPublishable(res) {
			publishable = append(publishable, res)
			itemIndex[res] = i
		} else {
			log.Debug("item not publishable",
				zap.String("name", item.Name),
				zap.Float64("confidence", res.Confidence),
			)
		}
	}

	// Curate the publishable subset; trimmed items keep their resolution
	// but are marked filtered rather than unresolved.
	kept := t.CurateCfg.Curate(publishable)
	keptSet := map[*model.ResolutionResult]bool{}
	for _, item := range kept {
		idx := itemIndex[item.Result]
		resolved[idx].Status = model.StatusPublishable
		resolved[idx].QualityScore = item.QualityScore
		resolved[idx].FinalRank = item.FinalRank
		keptSet[item.Result] = true
	}
	for _, res := range publishable {
		if !keptSet[res] {
			resolved[itemIndex[res]].Status = model.StatusFilteredByRatio
		}
	}

	log.Info("playlist transformed",
		zap.String("title", pl.Title),
		zap.Int("items", len(pl.Items)),
		zap.Int("publishable", len(kept)),
	)

	return model.ResolvedPlaylist{
		Title:       pl.Title,
		AnchorCity:  city,
		AnchorState: state,
		RunID:       runID,
		Items:       resolved,
	}
}

func (t *Transformer) anchors(pl model.Playlist) (city, state string) {
	city, state = pl.AnchorCity, pl.AnchorState
	if t.AnchorCityOverride != "" {
		city = t.AnchorCityOverride
	}
	if t.AnchorStateOverride != "" {
		state = t.AnchorStateOverride
	}
	return city, state
}
