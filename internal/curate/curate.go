// Package curate ranks resolved places by popularity signals, trims to a
// keep ratio, and applies a small deterministic shuffle so the published
// list does not look mechanically sorted.
package curate

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/sells-group/placelist-cli/internal/model"
)

// Config carries the curation weights and the shuffle seed.
type Config struct {
	// KeepRatio is the fraction of the ranked list retained, in (0, 1].
	// 1.0 keeps everything in score order.
	KeepRatio float64 `yaml:"keep_ratio" mapstructure:"keep_ratio"`

	// ShuffleSeed fixes the pseudo-random offsets so a curation run is
	// reproducible for the same input.
	ShuffleSeed uint64 `yaml:"shuffle_seed" mapstructure:"shuffle_seed"`

	// MaxShuffleOffset bounds how far any item may drift from its
	// score-sorted position.
	MaxShuffleOffset int `yaml:"max_shuffle_offset" mapstructure:"max_shuffle_offset"`

	RatingWeight float64 `yaml:"rating_weight" mapstructure:"rating_weight"`
	ReviewWeight float64 `yaml:"review_weight" mapstructure:"review_weight"`
	PhotoBonus   float64 `yaml:"photo_bonus" mapstructure:"photo_bonus"`
}

// DefaultConfig returns the production curation weights. Rating dominates;
// review volume is log-damped so a handful of extra reviews never outweighs
// a rating difference.
func DefaultConfig() Config {
	return Config{
		KeepRatio:        1.0,
		ShuffleSeed:      0x5eed,
		MaxShuffleOffset: 2,
		RatingWeight:     0.6,
		ReviewWeight:     0.3,
		PhotoBonus:       0.2,
	}
}

// QualityScore derives a popularity/quality score from a result's rating,
// log-damped review volume, and photo presence.
func (c Config) QualityScore(res *model.ResolutionResult) float64 {
	score := c.RatingWeight*res.Rating +
		c.ReviewWeight*math.Log10(math.Max(1, float64(res.ReviewCount+1)))
	if len(res.PhotoReferences) > 0 {
		score += c.PhotoBonus
	}
	return score
}

// Curate sorts descending by quality score, keeps ceil(n*KeepRatio) items,
// applies the bounded seeded shuffle, and assigns 1-based final ranks. The
// input results are never mutated.
func (c Config) Curate(results []*model.ResolutionResult) []model.CuratedItem {
	if len(results) == 0 {
		return nil
	}

	items := make([]model.CuratedItem, len(results))
	for i, res := range results {
		items[i] = model.CuratedItem{Result: res, QualityScore: c.QualityScore(res)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].QualityScore > items[j].QualityScore
	})

	ratio := c.KeepRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	keep := int(math.Ceil(float64(len(items)) * ratio))
	kept := items[:keep]

	c.localShuffle(kept)

	for i := range kept {
		kept[i].FinalRank = i + 1
	}
	return kept
}

// localShuffle swaps each position with a seeded offset neighbor. A swap is
// skipped when it would push either item more than MaxShuffleOffset from
// its score-sorted rank, so the displacement bound holds even across
// chained swaps.
func (c Config) localShuffle(items []model.CuratedItem) {
	maxOff := c.MaxShuffleOffset
	if maxOff <= 0 || len(items) < 2 {
		return
	}

	origRank := make(map[*model.ResolutionResult]int, len(items))
	for i := range items {
		origRank[items[i].Result] = i
	}

	rng := rand.New(rand.NewPCG(c.ShuffleSeed, c.ShuffleSeed))
	for i := range items {
		j := i + rng.IntN(2*maxOff+1) - maxOff
		if j < 0 {
			j = 0
		}
		if j >= len(items) {
			j = len(items) - 1
		}
		if j == i {
			continue
		}
		if abs(j-origRank[items[i].Result]) > maxOff || abs(i-origRank[items[j].Result]) > maxOff {
			continue
		}
		items[i], items[j] = items[j], items[i]
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
