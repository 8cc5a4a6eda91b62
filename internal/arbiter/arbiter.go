// Package arbiter asks a natural-language judge to break ties when the
// math-only match score is too ambiguous to trust alone.
package arbiter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/placelist-cli/internal/model"
	"github.com/sells-group/placelist-cli/pkg/anthropic"
)

const judgeSystemPrompt = `You judge whether a place name scraped from a travel article refers to the same real-world place as a candidate directory entry. The confidence value is the probability that they are the same place. Respond with a valid JSON object and nothing else: {"match": <true|false>, "confidence": <0.0-1.0>}`

const judgeUserPrompt = `Scraped mention:
  name: %s
  context: %s

Directory candidate:
  name: %s
  address: %s
  types: %s

Are these the same place?`

// neutralConfidence is returned for any judge failure; the reconciliation
// policy treats it as ambiguous and keeps the math score.
const neutralConfidence = 0.5

// Verdict is the judge's structured answer.
type Verdict struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
}

// Config bounds the grey zone and the reconciliation thresholds.
type Config struct {
	GreyZoneMin      float64 `yaml:"grey_zone_min" mapstructure:"grey_zone_min"`
	GreyZoneMax      float64 `yaml:"grey_zone_max" mapstructure:"grey_zone_max"`
	ConfirmThreshold float64 `yaml:"confirm_threshold" mapstructure:"confirm_threshold"`
	RejectThreshold  float64 `yaml:"reject_threshold" mapstructure:"reject_threshold"`
	RejectScore      float64 `yaml:"reject_score" mapstructure:"reject_score"`
	Model            string  `yaml:"model" mapstructure:"model"`
	MaxTokens        int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxContextChars  int     `yaml:"max_context_chars" mapstructure:"max_context_chars"`
}

// DefaultConfig returns the production arbitration thresholds.
func DefaultConfig() Config {
	return Config{
		GreyZoneMin:      0.35,
		GreyZoneMax:      0.85,
		ConfirmThreshold: 0.8,
		RejectThreshold:  0.3,
		RejectScore:      0.1,
		Model:            "claude-haiku-4-5-20251001",
		MaxTokens:        128,
		MaxContextChars:  250,
	}
}

// Arbiter folds a natural-language verdict into scores that fall inside the
// grey zone. It is advisory: an ambiguous or failed verdict leaves the math
// score untouched, and no call path returns an error.
type Arbiter struct {
	client anthropic.Client
	cfg    Config
}

// New creates an Arbiter. A nil client disables arbitration entirely.
func New(client anthropic.Client, cfg Config) *Arbiter {
	return &Arbiter{client: client, cfg: cfg}
}

// InGreyZone reports whether a math score should go to the judge. The band
// is half-open: min inclusive, max exclusive.
func (a *Arbiter) InGreyZone(score float64) bool {
	if a == nil || a.client == nil {
		return false
	}
	return score >= a.cfg.GreyZoneMin && score < a.cfg.GreyZoneMax
}

// Arbitrate returns the final score for a grey-zone candidate. A confident
// confirmation adopts the judge's confidence; a confident rejection forces
// the punitive reject score so a wrong match never gets published; anything
// in between keeps the math score.
func (a *Arbiter) Arbitrate(ctx context.Context, q model.ResolutionQuery, cand model.Candidate, mathScore float64) float64 {
	verdict := a.judge(ctx, q, cand)

	switch {
	case verdict.Confidence > a.cfg.ConfirmThreshold:
		return verdict.Confidence
	case verdict.Confidence < a.cfg.RejectThreshold:
		return a.cfg.RejectScore
	default:
		return mathScore
	}
}

// judge calls the model and degrades every failure to a neutral verdict.
func (a *Arbiter) judge(ctx context.Context, q model.ResolutionQuery, cand model.Candidate) Verdict {
	neutral := Verdict{Match: false, Confidence: neutralConfidence}

	prompt := fmt.Sprintf(judgeUserPrompt,
		q.Name,
		a.buildContext(q),
		cand.DisplayName,
		cand.FormattedAddress,
		strings.Join(cand.TypeTags, ", "),
	)

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    judgeSystemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		zap.L().Warn("judge call failed, keeping math score",
			zap.String("name", q.Name),
			zap.Error(err),
		)
		return neutral
	}

	verdict, err := parseVerdict(resp.Text())
	if err != nil {
		zap.L().Warn("judge returned malformed verdict, keeping math score",
			zap.String("name", q.Name),
			zap.Error(err),
		)
		return neutral
	}
	return verdict
}

// buildContext assembles the hint string sent to the judge: category,
// anchor location, and a truncated excerpt of the surrounding description.
func (a *Arbiter) buildContext(q model.ResolutionQuery) string {
	var parts []string
	if q.CategoryHint != "" {
		parts = append(parts, "category: "+q.CategoryHint)
	}
	loc := strings.TrimSpace(strings.Join(nonEmpty(q.AnchorCity, q.AnchorState), ", "))
	if loc != "" {
		parts = append(parts, "near: "+loc)
	}
	if q.ContextDescription != "" {
		excerpt := q.ContextDescription
		if max := a.cfg.MaxContextChars; max > 0 && len(excerpt) > max {
			excerpt = excerpt[:max]
		}
		parts = append(parts, "excerpt: "+excerpt)
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "; ")
}

// parseVerdict extracts the JSON verdict, tolerating markdown fences and
// surrounding prose, and clamps confidence into [0,1].
func parseVerdict(text string) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Verdict{}, fmt.Errorf("no JSON object in judge response")
	}

	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Verdict{}, err
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return v, nil
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
