package model

// NameCount is a generic name/count pair used by analytics rollups.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PriceBucket is one bar of the price distribution histogram.
type PriceBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// PricedTitle names a product together with its display price.
type PricedTitle struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// CategoryMetric feeds the category radar chart.
type CategoryMetric struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// AnalyticsResponse is the read-only catalog report. All fields are
// zero-valued when the catalog is empty or the report fails; the
// endpoint never errors.
type AnalyticsResponse struct {
	TotalProducts     int              `json:"total_products"`
	TopBrands         []NameCount      `json:"top_brands"`
	TopCategories     []NameCount      `json:"top_categories"`
	PriceDistribution []PriceBucket    `json:"price_distribution"`
	AveragePrice      float64          `json:"average_price"`
	MostExpensive     *PricedTitle     `json:"most_expensive"`
	LeastExpensive    *PricedTitle     `json:"least_expensive"`
	CategoryMetrics   []CategoryMetric `json:"category_metrics"`
}
