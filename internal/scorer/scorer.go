// Package scorer computes the math-only match-quality score between a
// resolution query and a directory candidate.
package scorer

import (
	"strings"

	"github.com/sells-group/placelist-cli/internal/model"
)

// Config carries the scoring weights as named fields so tests and callers
// can tune them without process-global state.
type Config struct {
	SimilarityWeight float64 `yaml:"similarity_weight" mapstructure:"similarity_weight"`
	TypeBonus        float64 `yaml:"type_bonus" mapstructure:"type_bonus"`
	StateBonus       float64 `yaml:"state_bonus" mapstructure:"state_bonus"`
	BaseOffset       float64 `yaml:"base_offset" mapstructure:"base_offset"`
}

// DefaultConfig returns the production scoring weights. The flat base offset
// means a candidate with zero textual similarity can still reach 0.4, a
// deliberate bias against discarding every weak candidate before the
// grey-zone stage gets a look.
func DefaultConfig() Config {
	return Config{
		SimilarityWeight: 0.6,
		TypeBonus:        0.1,
		StateBonus:       0.1,
		BaseOffset:       0.2,
	}
}

// MathScore returns a bounded [0,1] match-quality score for one candidate:
// weighted name similarity, a type-compatibility bonus or penalty, and a
// state-agreement bonus on top of the base offset.
func (c Config) MathScore(q model.ResolutionQuery, cand model.Candidate) float64 {
	sim := float64(NameSimilarity(q.Name, cand.DisplayName)) / 100.0
	score := sim*c.SimilarityWeight + c.BaseOffset

	if intersects(cand.TypeTags, AllowedTypes(q.CategoryHint, q.Scope)) {
		score += c.TypeBonus
	} else {
		score -= c.TypeBonus
	}

	if q.AnchorState != "" &&
		strings.Contains(strings.ToLower(cand.FormattedAddress), strings.ToLower(q.AnchorState)) {
		score += c.StateBonus
	}

	return clamp01(score)
}

func intersects(tags []string, allowed map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := allowed[strings.ToLower(tag)]; ok {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
