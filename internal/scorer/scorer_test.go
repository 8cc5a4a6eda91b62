package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/placelist-cli/internal/model"
)

func TestNameSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 100, NameSimilarity("Red Fort", "Red Fort"))
}

func TestNameSimilarity_OrderIndependent(t *testing.T) {
	assert.Equal(t, 100, NameSimilarity("Red Fort Delhi", "Delhi Red Fort"))
}

func TestNameSimilarity_Containment(t *testing.T) {
	// One token set fully inside the other scores 100.
	assert.Equal(t, 100, NameSimilarity("Red Fort", "Red Fort Delhi"))
}

func TestNameSimilarity_Partial(t *testing.T) {
	// {taj, mahal, agra} vs {taj, hotel}: 1 shared of 4 distinct.
	assert.Equal(t, 25, NameSimilarity("Taj Mahal Agra", "Taj Hotel"))
}

func TestNameSimilarity_Disjoint(t *testing.T) {
	assert.Equal(t, 0, NameSimilarity("Red Fort", "Gateway of India"))
}

func TestNameSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0, NameSimilarity("", "Red Fort"))
	assert.Equal(t, 0, NameSimilarity("", ""))
}

func TestNameSimilarity_PunctAndCase(t *testing.T) {
	assert.Equal(t, 100, NameSimilarity("St. Mary's Basilica", "st marys basilica"))
}

func TestAllowedTypes_HintKeyword(t *testing.T) {
	allowed := AllowedTypes("Hindu temple", model.ScopePointOfInterest)
	assert.Contains(t, allowed, "hindu_temple")
	assert.Contains(t, allowed, "place_of_worship")
	// Scope tags always included.
	assert.Contains(t, allowed, "tourist_attraction")
}

func TestAllowedTypes_ScopeOnly(t *testing.T) {
	allowed := AllowedTypes("", model.ScopeDestination)
	assert.Contains(t, allowed, "locality")
	assert.NotContains(t, allowed, "hindu_temple")
}

func TestMathScore_RedFortScenario(t *testing.T) {
	q := model.ResolutionQuery{
		Name:       "Red Fort",
		AnchorCity: "Delhi",
		Scope:      model.ScopePointOfInterest,
	}
	cand := model.Candidate{
		DisplayName:      "Red Fort",
		FormattedAddress: "Delhi, India",
		TypeTags:         []string{"tourist_attraction"},
		Rating:           4.6,
		ReviewCount:      50000,
	}
	// sim=1.0, typeBonus=+0.1, no state hint: 0.6 + 0.1 + 0.2 = 0.9
	assert.InDelta(t, 0.9, DefaultConfig().MathScore(q, cand), 0.001)
}

func TestMathScore_TypePenalty(t *testing.T) {
	q := model.ResolutionQuery{Name: "Red Fort", Scope: model.ScopePointOfInterest}
	cand := model.Candidate{DisplayName: "Red Fort", TypeTags: []string{"lodging"}}
	// 0.6*1.0 - 0.1 + 0.2 = 0.7
	assert.InDelta(t, 0.7, DefaultConfig().MathScore(q, cand), 0.001)
}

func TestMathScore_StateBonus(t *testing.T) {
	q := model.ResolutionQuery{
		Name:        "City Palace",
		AnchorState: "Rajasthan",
		Scope:       model.ScopePointOfInterest,
	}
	cand := model.Candidate{
		DisplayName:      "City Palace",
		FormattedAddress: "Jaipur, Rajasthan 302002, India",
		TypeTags:         []string{"tourist_attraction"},
	}
	// 0.6 + 0.1 + 0.1 + 0.2 = 1.0
	assert.InDelta(t, 1.0, DefaultConfig().MathScore(q, cand), 0.001)
}

func TestMathScore_Bounded(t *testing.T) {
	q := model.ResolutionQuery{Name: "Anything", Scope: model.ScopePointOfInterest}
	for _, cand := range []model.Candidate{
		{DisplayName: "Anything", TypeTags: []string{"point_of_interest"}, FormattedAddress: "x"},
		{DisplayName: "Completely Different Words"},
		{},
	} {
		s := DefaultConfig().MathScore(q, cand)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestMathScore_ZeroSimilarityFloor(t *testing.T) {
	// Zero similarity with a compatible type keeps the candidate above zero.
	q := model.ResolutionQuery{Name: "Red Fort", Scope: model.ScopePointOfInterest}
	cand := model.Candidate{DisplayName: "Lotus Garden", TypeTags: []string{"tourist_attraction"}}
	// 0 + 0.1 + 0.2 = 0.3
	assert.InDelta(t, 0.3, DefaultConfig().MathScore(q, cand), 0.001)
}
