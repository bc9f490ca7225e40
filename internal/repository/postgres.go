package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"concierge/internal/model"
	"concierge/internal/utils"
)

// PostgresRepository handles catalog index and log operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// catalogRow is the scan target for similarity search results.
type catalogRow struct {
	ID          string          `db:"id"`
	Title       sql.NullString  `db:"title"`
	Price       sql.NullString  `db:"price"`
	Brand       sql.NullString  `db:"brand"`
	Material    sql.NullString  `db:"material"`
	Color       sql.NullString  `db:"color"`
	Image       sql.NullString  `db:"image"`
	Dimensions  sql.NullString  `db:"dimensions"`
	Description sql.NullString  `db:"description"`
	Score       sql.NullFloat64 `db:"score"`
}

// Search runs a single nearest-neighbor query against the catalog index
// and returns ranked candidates with their metadata, best first. Cosine
// distance is mapped to a [0,1] similarity as 1 - distance.
func (r *PostgresRepository) Search(ctx context.Context, vector []float32, topK int) ([]model.CandidateMatch, error) {
	query := `
		SELECT
			id, title, price, brand, material, color, image, dimensions, description,
			1 - (embedding <=> $1) AS score
		FROM catalog_items
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	var rows []catalogRow
	if err := r.db.SelectContext(ctx, &rows, query, pgvector.NewVector(vector), topK); err != nil {
		return nil, fmt.Errorf("failed to query catalog index: %w", err)
	}

	matches := make([]model.CandidateMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, model.CandidateMatch{
			ID:    row.ID,
			Score: row.Score.Float64,
			Metadata: metadataMap(map[string]sql.NullString{
				"title":       row.Title,
				"price":       row.Price,
				"brand":       row.Brand,
				"material":    row.Material,
				"color":       row.Color,
				"image":       row.Image,
				"dimensions":  row.Dimensions,
				"description": row.Description,
			}),
		})
	}
	return matches, nil
}

func metadataMap(fields map[string]sql.NullString) map[string]string {
	meta := make(map[string]string, len(fields))
	for key, value := range fields {
		if value.Valid {
			meta[key] = value.String
		}
	}
	return meta
}

// Analytics builds the read-only catalog report. Price strings are
// parsed in Go because the catalog stores display prices, not numerics.
func (r *PostgresRepository) Analytics(ctx context.Context) (*model.AnalyticsResponse, error) {
	report := &model.AnalyticsResponse{
		TopBrands:         []model.NameCount{},
		TopCategories:     []model.NameCount{},
		PriceDistribution: []model.PriceBucket{},
		CategoryMetrics:   []model.CategoryMetric{},
	}

	if err := r.db.GetContext(ctx, &report.TotalProducts, `SELECT COUNT(*) FROM catalog_items`); err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}

	brandQuery := `
		SELECT brand AS name, COUNT(*) AS count
		FROM catalog_items
		WHERE brand IS NOT NULL AND brand <> ''
		GROUP BY brand
		ORDER BY count DESC
		LIMIT 10
	`
	if err := r.db.SelectContext(ctx, &report.TopBrands, brandQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate brands: %w", err)
	}

	categoryQuery := `
		SELECT cat AS name, COUNT(*) AS count
		FROM catalog_items, jsonb_array_elements_text(categories) AS cat
		GROUP BY cat
		ORDER BY count DESC
		LIMIT 15
	`
	if err := r.db.SelectContext(ctx, &report.TopCategories, categoryQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}

	var priced []model.PricedTitle
	priceQuery := `
		SELECT COALESCE(title, '') AS title, price
		FROM catalog_items
		WHERE price IS NOT NULL AND price <> ''
	`
	if err := r.db.SelectContext(ctx, &priced, priceQuery); err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	summarizePrices(report, priced)

	for i, cat := range report.TopCategories {
		if i == 8 {
			break
		}
		name := cat.Name
		if len(name) > 15 {
			name = name[:15]
		}
		report.CategoryMetrics = append(report.CategoryMetrics, model.CategoryMetric{
			Category: name,
			Count:    cat.Count,
		})
	}

	return report, nil
}

// priceRanges are the histogram buckets of the analytics report.
var priceRanges = []struct {
	label string
	min   float64
	max   float64
}{
	{"$0-50", 0, 50},
	{"$50-100", 50, 100},
	{"$100-200", 100, 200},
	{"$200-500", 200, 500},
	{"$500-1000", 500, 1000},
	{"$1000+", 1000, -1},
}

func summarizePrices(report *model.AnalyticsResponse, priced []model.PricedTitle) {
	type pricedValue struct {
		model.PricedTitle
		value float64
	}

	parsed := make([]pricedValue, 0, len(priced))
	for _, p := range priced {
		if v, ok := utils.ParsePrice(p.Price); ok {
			parsed = append(parsed, pricedValue{PricedTitle: p, value: v})
		}
	}
	if len(parsed) == 0 {
		return
	}

	var total float64
	for _, p := range parsed {
		total += p.value
	}
	report.AveragePrice = roundCents(total / float64(len(parsed)))

	for _, bucket := range priceRanges {
		count := 0
		for _, p := range parsed {
			if p.value >= bucket.min && (bucket.max < 0 || p.value < bucket.max) {
				count++
			}
		}
		if count > 0 {
			report.PriceDistribution = append(report.PriceDistribution, model.PriceBucket{
				Range: bucket.label,
				Count: count,
			})
		}
	}

	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].value > parsed[j].value })
	most := parsed[0].PricedTitle
	least := parsed[len(parsed)-1].PricedTitle
	report.MostExpensive = &most
	report.LeastExpensive = &least
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// LogSearch records a recommendation request and its outcome
func (r *PostgresRepository) LogSearch(ctx context.Context, searchID, query string, intent model.Intent, spec *model.FilterSpec, resultCount int, productIDs []string, responseTimeMs int) error {
	filters, err := json.Marshal(spec)
	if err != nil {
		filters = []byte("{}")
	}

	logQuery := `
		INSERT INTO search_logs (search_id, query, intent, filters, result_count, returned_product_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, logQuery, searchID, query, string(intent), filters, resultCount, pq.Array(productIDs), responseTimeMs); err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback records a user action against a logged search
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID, productID, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_product_id = $2, action = $3
		WHERE search_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, searchID, productID, action); err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
