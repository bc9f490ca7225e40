package handler

import (
	"log"
	"net/http"

	"concierge/internal/model"
	"concierge/internal/repository"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves catalog and search statistics
type AnalyticsHandler struct {
	repo *repository.PostgresRepository
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(repo *repository.PostgresRepository) *AnalyticsHandler {
	return &AnalyticsHandler{
		repo: repo,
	}
}

// Get handles GET /api/v1/analytics. Aggregation failures degrade to an
// empty report instead of an error response so dashboards keep loading.
func (h *AnalyticsHandler) Get(c *gin.Context) {
	report, err := h.repo.Analytics(c.Request.Context())
	if err != nil {
		log.Printf("Analytics query failed: %v", err)
		report = &model.AnalyticsResponse{
			TopBrands:         []model.NameCount{},
			TopCategories:     []model.NameCount{},
			PriceDistribution: []model.PriceBucket{},
			CategoryMetrics:   []model.CategoryMetric{},
		}
	}
	c.JSON(http.StatusOK, report)
}
