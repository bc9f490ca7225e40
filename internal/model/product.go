package model

// Product category constants. Sports and electronics are query-side
// sentinels only: the query parser may emit them, the title classifier
// never does.
const (
	CategorySofa        = "sofa"
	CategoryChair       = "chair"
	CategoryBed         = "bed"
	CategoryTable       = "table"
	CategoryOttoman     = "ottoman"
	CategoryStorage     = "storage"
	CategoryOther       = "other"
	CategorySports      = "sports"
	CategoryElectronics = "electronics"
)

// ClassifierCategories is the closed set the title classifier may return.
var ClassifierCategories = map[string]bool{
	CategorySofa:    true,
	CategoryChair:   true,
	CategoryBed:     true,
	CategoryTable:   true,
	CategoryOttoman: true,
	CategoryStorage: true,
	CategoryOther:   true,
}

// Product is an immutable catalog item. Prices stay display strings
// ("$449.99") because the catalog stores them that way; numeric
// comparison happens through utils.ParsePrice at filter time.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Image       *string  `json:"image,omitempty"`
	Price       *string  `json:"price,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	Material    *string  `json:"material,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Dimensions  *string  `json:"dimensions,omitempty"`
	KeyFeatures []string `json:"key_features,omitempty"`
	BestFor     *string  `json:"best_for,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

// CandidateMatch is a vector-index hit prior to classification and
// filtering. Metadata is the open mapping the index stores per item.
type CandidateMatch struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// Title returns the candidate's title metadata, empty when absent.
func (m *CandidateMatch) Title() string {
	return m.Metadata["title"]
}
