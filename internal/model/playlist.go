package model

// ResolutionStatus labels an item's outcome in the batch transform output.
type ResolutionStatus string

const (
	StatusPublishable     ResolutionStatus = "publishable"
	StatusUnresolved      ResolutionStatus = "unresolved"
	StatusFilteredByRatio ResolutionStatus = "filtered_by_ratio"
)

// RawItem is one scraped place mention inside a playlist group.
type RawItem struct {
	Name         string `json:"name" yaml:"name"`
	CategoryHint string `json:"category_hint,omitempty" yaml:"category_hint,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	LocationHint string `json:"location_hint,omitempty" yaml:"location_hint,omitempty"`
}

// Playlist is an ordered group of raw items sharing an anchor location.
type Playlist struct {
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	AnchorCity  string    `json:"anchor_city,omitempty" yaml:"anchor_city,omitempty"`
	AnchorState string    `json:"anchor_state,omitempty" yaml:"anchor_state,omitempty"`
	Scope       Scope     `json:"scope,omitempty" yaml:"scope,omitempty"`
	Items       []RawItem `json:"items" yaml:"items"`
}

// ResolvedItem is a RawItem augmented with its resolution outcome.
type ResolvedItem struct {
	RawItem      `yaml:",inline"`
	Result       *ResolutionResult `json:"result,omitempty" yaml:"result,omitempty"`
	QualityScore float64           `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
	FinalRank    int               `json:"final_rank,omitempty" yaml:"final_rank,omitempty"`
	Status       ResolutionStatus  `json:"resolution_status" yaml:"resolution_status"`
}

// ResolvedPlaylist mirrors the input grouping with resolved, curated items.
type ResolvedPlaylist struct {
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	AnchorCity  string         `json:"anchor_city,omitempty" yaml:"anchor_city,omitempty"`
	AnchorState string         `json:"anchor_state,omitempty" yaml:"anchor_state,omitempty"`
	RunID       string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Items       []ResolvedItem `json:"items" yaml:"items"`
}
