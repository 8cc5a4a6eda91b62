// Package model defines the core data types shared across the resolution
// and curation pipeline.
package model

// Scope classifies what kind of place a resolution query is looking for.
type Scope string

const (
	ScopeDestination     Scope = "destination"
	ScopePointOfInterest Scope = "point_of_interest"
	ScopeNaturalFeature  Scope = "natural_feature"
)

// ParseScope maps a config or flag value to a Scope. Empty input falls back
// to point_of_interest.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeDestination, ScopePointOfInterest, ScopeNaturalFeature:
		return Scope(s), true
	case "":
		return ScopePointOfInterest, true
	}
	return "", false
}

// ResolutionQuery is the immutable input to a single resolution. AnchorState
// participates in scoring but not in the cache identity (see normalize.CacheKey).
type ResolutionQuery struct {
	Name               string `json:"name"`
	CategoryHint       string `json:"category_hint,omitempty"`
	Scope              Scope  `json:"scope"`
	AnchorCity         string `json:"anchor_city,omitempty"`
	AnchorState        string `json:"anchor_state,omitempty"`
	ContextDescription string `json:"context_description,omitempty"`
	SearchRadiusMeters int    `json:"search_radius_meters,omitempty"`
}

// Candidate is one directory-entry observation returned by a places search.
// Candidates are ephemeral: produced per query, never persisted on their own.
type Candidate struct {
	ExternalID       string   `json:"external_id"`
	DisplayName      string   `json:"display_name"`
	FormattedAddress string   `json:"formatted_address"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	TypeTags         []string `json:"type_tags,omitempty"`
	Rating           float64  `json:"rating"`
	ReviewCount      int      `json:"review_count"`
	PhotoReferences  []string `json:"photo_references,omitempty"`
}

// OpeningPeriod is a single open/close span from the directory's weekly hours.
type OpeningPeriod struct {
	OpenDay   int    `json:"open_day"`
	OpenTime  string `json:"open_time"`
	CloseDay  int    `json:"close_day"`
	CloseTime string `json:"close_time"`
}

// ResolutionResult is the resolver's output and the cached value. An empty
// ExternalID together with Confidence 0 signals "unresolved"; any non-empty
// ExternalID means the confidence was computed against at least one candidate.
type ResolutionResult struct {
	ExternalID       string   `json:"external_id,omitempty"`
	DisplayName      string   `json:"display_name,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	TypeTags         []string `json:"type_tags,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	ReviewCount      int      `json:"review_count,omitempty"`
	PhotoReferences  []string `json:"photo_references,omitempty"`

	// Confidence is rounded to 3 decimals by the resolver.
	Confidence float64 `json:"confidence"`

	Website           string          `json:"website,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	OpeningPeriods    []OpeningPeriod `json:"opening_periods,omitempty"`
	PriceLevel        int             `json:"price_level,omitempty"`
	PermanentlyClosed bool            `json:"permanently_closed,omitempty"`
	UTCOffsetMinutes  int             `json:"utc_offset_minutes,omitempty"`
}

// Resolved reports whether the result carries a directory identity.
func (r *ResolutionResult) Resolved() bool {
	return r != nil && r.ExternalID != ""
}

// Unresolved returns the canonical "no match" result shape.
func Unresolved() *ResolutionResult {
	return &ResolutionResult{Confidence: 0}
}

// CuratedItem is a ResolutionResult annotated with a derived quality score
// and its 1-based position after trim and shuffle. The underlying result is
// never mutated by curation.
type CuratedItem struct {
	Result       *ResolutionResult `json:"result"`
	QualityScore float64           `json:"quality_score"`
	FinalRank    int               `json:"final_rank"`
}
