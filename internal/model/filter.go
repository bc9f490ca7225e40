package model

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	IntentGreeting Intent = "GREETING"
	IntentSearch   Intent = "SEARCH"
	IntentFollowUp Intent = "FOLLOW_UP"
	IntentQuestion Intent = "QUESTION"
)

// FilterSpec is a structured constraint record extracted from free text.
// Every field is optional; nil means no constraint. Category carries the
// query-side superset (including the sports/electronics sentinels) and is
// only populated for fresh searches.
type FilterSpec struct {
	Category *string  `json:"category,omitempty"`
	Material *string  `json:"material,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Size     *string  `json:"size,omitempty"` // "large" or "small"
	PriceMax *float64 `json:"price_max,omitempty"`
	Brand    *string  `json:"brand,omitempty"`
}

// Empty reports whether the spec carries no constraint at all. An empty
// spec applied to a product list returns the list unchanged.
func (s *FilterSpec) Empty() bool {
	if s == nil {
		return true
	}
	return s.Category == nil && s.Material == nil && s.Color == nil &&
		s.Size == nil && s.PriceMax == nil && s.Brand == nil
}

// CategoryOrOther returns the requested category, defaulting to "other".
func (s *FilterSpec) CategoryOrOther() string {
	if s == nil || s.Category == nil || *s.Category == "" {
		return CategoryOther
	}
	return *s.Category
}
