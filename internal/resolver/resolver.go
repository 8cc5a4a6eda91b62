// Package resolver composes normalization, directory search, scoring,
// grey-zone arbitration, and the resolution cache into a single resolve
// operation with a publishability verdict.
package resolver

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placelist-cli/internal/arbiter"
	"github.com/sells-group/placelist-cli/internal/model"
	"github.com/sells-group/placelist-cli/internal/normalize"
	"github.com/sells-group/placelist-cli/internal/resilience"
	"github.com/sells-group/placelist-cli/internal/scorer"
	"github.com/sells-group/placelist-cli/internal/store"
	"github.com/sells-group/placelist-cli/pkg/places"
)

// Config carries every resolution threshold as a named field so tests can
// construct a resolver without hidden process-wide state.
type Config struct {
	// MinConfidence is the publishability floor.
	MinConfidence float64

	// DetailsThreshold gates the extra details fetch for the best candidate.
	DetailsThreshold float64

	// RequirePhoto demands at least one photo reference for publishability.
	RequirePhoto bool

	// RefreshPhotos enables in-place photo backfill on cache hits that have
	// no photo references. The cached score is never recomputed.
	RefreshPhotos bool

	// SearchRadiusMeters is applied when the query doesn't set its own.
	SearchRadiusMeters int

	Scorer scorer.Config
	Retry  resilience.RetryConfig
}

// DefaultConfig returns production resolution thresholds.
func DefaultConfig() Config {
	return Config{
		MinConfidence:      0.70,
		DetailsThreshold:   0.5,
		SearchRadiusMeters: 50000,
		Scorer:             scorer.DefaultConfig(),
		Retry:              resilience.DefaultRetryConfig(),
	}
}

// Resolver resolves noisy place names against the directory. It never
// returns an error for a data-quality or service-availability problem:
// every query gets a ResolutionResult, possibly the unresolved shape.
type Resolver struct {
	directory places.Client
	arb       *arbiter.Arbiter
	cache     store.Store
	cfg       Config
}

// New creates a Resolver. The directory client is the one hard dependency;
// its absence is a startup error, not a per-query one. Arbiter and cache
// are optional and their absence just disables the corresponding stage.
func New(directory places.Client, arb *arbiter.Arbiter, cache store.Store, cfg Config) (*Resolver, error) {
	if directory == nil {
		return nil, eris.New("resolver: directory client is required")
	}
	return &Resolver{directory: directory, arb: arb, cache: cache, cfg: cfg}, nil
}

// Resolve finds the best directory match for a query.
func (r *Resolver) Resolve(ctx context.Context, q model.ResolutionQuery) *model.ResolutionResult {
	if strings.TrimSpace(q.Name) == "" {
		return model.Unresolved()
	}

	log := zap.L().With(zap.String("name", q.Name), zap.String("city", q.AnchorCity))
	key := normalize.CacheKey(q.Name, q.CategoryHint, string(q.Scope), q.AnchorCity)

	if cached := r.fromCache(ctx, key, log); cached != nil {
		if r.cfg.RefreshPhotos && cached.Resolved() && len(cached.PhotoReferences) == 0 {
			r.backfillPhotos(ctx, key, cached, log)
		}
		return cached
	}

	best, bestScore := r.findBest(ctx, q, log)

	result := model.Unresolved()
	if best != nil {
		result = candidateResult(*best, round3(bestScore))
		if bestScore >= r.cfg.DetailsThreshold {
			r.enrich(ctx, result, log)
		}
	}

	r.toCache(ctx, key, result, log)
	return result
}

// IsPublishable reports whether a result meets the confidence, identity,
// and quality bar for inclusion in a curated list. Pure predicate.
func (c Config) IsPublishable(res *model.ResolutionResult) bool {
	if !res.Resolved() {
		return false
	}
	if res.Confidence < c.MinConfidence {
		return false
	}
	// A sub-1.0 rating with actual reviews means the directory entry is
	// real but bad; zero reviews just means unrated.
	if res.Rating < 1.0 && res.ReviewCount > 0 {
		return false
	}
	if c.RequirePhoto && len(res.PhotoReferences) == 0 {
		return false
	}
	return true
}

// IsPublishable applies the resolver's configured thresholds.
func (r *Resolver) IsPublishable(res *model.ResolutionResult) bool {
	return r.cfg.IsPublishable(res)
}

// BackfillPhotos fetches photo references for a cached entry that has none
// and updates the cache in place. Returns true when photos were added.
func (r *Resolver) BackfillPhotos(ctx context.Context, key string, res *model.ResolutionResult) bool {
	log := zap.L().With(zap.String("cache_key", key))
	return r.backfillPhotos(ctx, key, res, log)
}

// findBest searches the directory and returns the highest-scoring candidate
// with its final (possibly arbitrated) score. Directory order breaks ties:
// the first candidate to reach a score keeps it.
func (r *Resolver) findBest(ctx context.Context, q model.ResolutionQuery, log *zap.Logger) (*model.Candidate, float64) {
	candidates := r.search(ctx, q, log)

	var best *model.Candidate
	bestScore := 0.0
	for i := range candidates {
		cand := candidates[i]
		score := r.cfg.Scorer.MathScore(q, cand)
		if r.arb.InGreyZone(score) {
			final := r.arb.Arbitrate(ctx, q, cand, score)
			log.Debug("grey-zone arbitration",
				zap.String("candidate", cand.DisplayName),
				zap.Float64("math_score", score),
				zap.Float64("final_score", final),
			)
			score = final
		}
		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	return best, bestScore
}

// search builds text queries from the alias-expanded name plus the anchor
// location and returns the first non-empty candidate page. Search failures
// degrade to an empty candidate list.
func (r *Resolver) search(ctx context.Context, q model.ResolutionQuery, log *zap.Logger) []model.Candidate {
	radius := q.SearchRadiusMeters
	if radius <= 0 {
		radius = r.cfg.SearchRadiusMeters
	}

	for _, variant := range normalize.ExpandAliases(q.Name) {
		parts := []string{variant}
		if q.AnchorCity != "" {
			parts = append(parts, q.AnchorCity)
		}
		if q.AnchorState != "" {
			parts = append(parts, q.AnchorState)
		}
		queryText := strings.Join(parts, " ")

		retryCfg := r.cfg.Retry
		retryCfg.OnRetry = resilience.RetryLogger("places", "text_search")
		found, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]places.Place, error) {
			return r.directory.TextSearch(ctx, queryText, radius)
		})
		if err != nil {
			log.Warn("directory search failed", zap.String("query", queryText), zap.Error(err))
			continue
		}
		if len(found) > 0 {
			return toCandidates(found)
		}
	}
	return nil
}

// enrich issues the single details fetch for a confident best candidate and
// merges the richer fields into the result. Failures leave the result as-is.
func (r *Resolver) enrich(ctx context.Context, res *model.ResolutionResult, log *zap.Logger) {
	retryCfg := r.cfg.Retry
	retryCfg.OnRetry = resilience.RetryLogger("places", "details")
	details, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*places.Details, error) {
		return r.directory.Details(ctx, res.ExternalID)
	})
	if err != nil {
		log.Warn("details fetch failed", zap.String("external_id", res.ExternalID), zap.Error(err))
		return
	}

	res.Website = details.Website
	res.Phone = details.Phone
	res.PriceLevel = details.PriceLevel
	res.PermanentlyClosed = details.PermanentlyClosed
	res.UTCOffsetMinutes = details.UTCOffsetMinutes
	for _, p := range details.OpeningPeriods {
		res.OpeningPeriods = append(res.OpeningPeriods, model.OpeningPeriod{
			OpenDay:   p.OpenDay,
			OpenTime:  p.OpenTime,
			CloseDay:  p.CloseDay,
			CloseTime: p.CloseTime,
		})
	}
	if len(res.PhotoReferences) == 0 {
		res.PhotoReferences = details.PhotoReferences
	}
}

func (r *Resolver) backfillPhotos(ctx context.Context, key string, res *model.ResolutionResult, log *zap.Logger) bool {
	details, err := r.directory.Details(ctx, res.ExternalID)
	if err != nil {
		log.Warn("photo backfill fetch failed", zap.Error(err))
		return false
	}
	if len(details.PhotoReferences) == 0 {
		return false
	}

	res.PhotoReferences = details.PhotoReferences
	if r.cache != nil {
		if err := r.cache.UpdatePhotoRefs(ctx, key, details.PhotoReferences); err != nil {
			log.Warn("photo backfill cache update failed", zap.Error(err))
		}
	}
	return true
}

// fromCache returns the cached result for key, treating any cache failure
// as a miss.
func (r *Resolver) fromCache(ctx context.Context, key string, log *zap.Logger) *model.ResolutionResult {
	if r.cache == nil {
		return nil
	}
	cached, err := r.cache.GetResolution(ctx, key)
	if err != nil {
		log.Warn("cache read failed, resolving fresh", zap.Error(err))
		return nil
	}
	return cached
}

// toCache persists the result, unresolved shape included. Write failures
// are non-fatal: the resolution already succeeded.
func (r *Resolver) toCache(ctx context.Context, key string, res *model.ResolutionResult, log *zap.Logger) {
	if r.cache == nil {
		return
	}
	if err := r.cache.PutResolution(ctx, key, res); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}

func candidateResult(cand model.Candidate, confidence float64) *model.ResolutionResult {
	return &model.ResolutionResult{
		ExternalID:       cand.ExternalID,
		DisplayName:      cand.DisplayName,
		FormattedAddress: cand.FormattedAddress,
		Latitude:         cand.Latitude,
		Longitude:        cand.Longitude,
		TypeTags:         cand.TypeTags,
		Rating:           cand.Rating,
		ReviewCount:      cand.ReviewCount,
		PhotoReferences:  cand.PhotoReferences,
		Confidence:       confidence,
	}
}

func toCandidates(found []places.Place) []model.Candidate {
	out := make([]model.Candidate, 0, len(found))
	for _, p := range found {
		out = append(out, model.Candidate{
			ExternalID:       p.PlaceID,
			DisplayName:      p.Name,
			FormattedAddress: p.FormattedAddress,
			Latitude:         p.Latitude,
			Longitude:        p.Longitude,
			TypeTags:         p.Types,
			Rating:           p.Rating,
			ReviewCount:      p.UserRatingsTotal,
			PhotoReferences:  p.PhotoReferences,
		})
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
