package service

import (
	"context"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"concierge/internal/model"
)

// keywordGroups is the fixed-priority scan used when the model call
// fails or returns a word outside the category set. Group order matters:
// "Sofa Side Table" must resolve to sofa-family keywords before table
// would match, mirroring the worked examples of the classifier prompt.
var keywordGroups = []struct {
	category string
	keywords []string
}{
	{model.CategorySofa, []string{"sofa", "couch", "sectional", "loveseat"}},
	{model.CategoryChair, []string{"chair", "recliner"}},
	{model.CategoryBed, []string{"bed", "bedframe"}},
	{model.CategoryTable, []string{"table", "desk"}},
	{model.CategoryOttoman, []string{"ottoman", "footstool"}},
}

// ProductClassifier assigns a single canonical category to a product
// from its title. Failures always degrade to "other"; classification is
// never fatal to a request.
type ProductClassifier struct {
	aiClient ChainClient
	cache    *lru.Cache[string, string]
}

// NewProductClassifier creates a new classifier with a bounded cache of
// classified titles. The cache is a performance optimization only; a
// cacheSize of zero disables it.
func NewProductClassifier(aiClient ChainClient, cacheSize int) *ProductClassifier {
	var cache *lru.Cache[string, string]
	if cacheSize > 0 {
		cache, _ = lru.New[string, string](cacheSize)
	}
	return &ProductClassifier{
		aiClient: aiClient,
		cache:    cache,
	}
}

// Classify returns the primary category of a product title.
func (c *ProductClassifier) Classify(ctx context.Context, title string) string {
	if c.cache != nil {
		if category, ok := c.cache.Get(title); ok {
			return category
		}
	}

	category := c.classify(ctx, title)

	if c.cache != nil {
		c.cache.Add(title, category)
	}
	return category
}

func (c *ProductClassifier) classify(ctx context.Context, title string) string {
	if c.aiClient != nil && c.aiClient.IsEnabled() {
		raw, err := c.aiClient.ClassifyTitle(ctx, title)
		if err != nil {
			log.Printf("Title classification failed: %v, using keyword fallback", err)
		} else {
			word := strings.ToLower(strings.TrimSpace(raw))
			if model.ClassifierCategories[word] {
				return word
			}
		}
	}

	return classifyByKeywords(title)
}

// classifyByKeywords scans the title against the fixed-priority keyword
// groups; the first matching group wins, no match means "other".
func classifyByKeywords(title string) string {
	lower := strings.ToLower(title)
	for _, group := range keywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}
	return model.CategoryOther
}
