package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"concierge/internal/model"
	"concierge/internal/utils"
)

// Keyword priority lists for the deterministic fallback. List order is
// behaviorally significant: the first match wins, so "black and white"
// resolves to whichever color appears first here.
var (
	largeSizeWords = []string{"large", "big", "oversized"}
	smallSizeWords = []string{"small", "compact", "mini"}

	fallbackColors = []string{
		"red", "blue", "green", "black", "white", "gray",
		"grey", "brown", "yellow", "navy", "beige", "tan",
	}

	fallbackMaterials = []string{
		"wood", "wooden", "metal", "fabric", "leather", "velvet", "plastic",
	}

	// "under $130", "below 130", "less than $130", "< 130"
	pricePrefixRe = regexp.MustCompile(`(?:under|below|less than|<)\s*\$?\s*(\d+)`)
	// trailing-currency form: "130$"
	priceSuffixRe = regexp.MustCompile(`\$?\s*(\d+)\s*\$`)
)

// AttributeExtractor normalizes free text into a FilterSpec. The model
// path is best-effort; whenever it yields nothing the deterministic
// keyword/regex fallback runs over the raw utterance.
type AttributeExtractor struct {
	aiClient ChainClient
}

// NewAttributeExtractor creates a new attribute extractor
func NewAttributeExtractor(aiClient ChainClient) *AttributeExtractor {
	return &AttributeExtractor{aiClient: aiClient}
}

// extractedFilters is the wire shape the extraction chains return.
// Strings arrive as the model wrote them; normalization happens after
// parsing.
type extractedFilters struct {
	Category *string  `json:"category,omitempty"`
	Material *string  `json:"material,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Size     *string  `json:"size,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Brand    *string  `json:"brand,omitempty"`
}

// ExtractSearch parses a fresh search query. Category (including the
// sports/electronics sentinels) is only ever produced by the model; the
// fallback fills in the remaining attribute fields.
func (e *AttributeExtractor) ExtractSearch(ctx context.Context, query string) *model.FilterSpec {
	spec := &model.FilterSpec{}

	if e.aiClient != nil && e.aiClient.IsEnabled() {
		raw, err := e.aiClient.ParseSearchQuery(ctx, query)
		if err != nil {
			log.Printf("Query parse failed: %v, using rule-based fallback", err)
		} else {
			spec = e.parseModelFilters(raw)
		}
	}

	if spec.Empty() {
		e.applyRuleFallback(spec, query)
	}
	return spec
}

// ExtractFollowUp parses a refinement request against the brief list of
// previously shown products.
func (e *AttributeExtractor) ExtractFollowUp(ctx context.Context, query, productList string) *model.FilterSpec {
	spec := &model.FilterSpec{}

	if e.aiClient != nil && e.aiClient.IsEnabled() {
		raw, err := e.aiClient.ParseFollowUpFilters(ctx, productList, query)
		if err != nil {
			log.Printf("Follow-up filter parse failed: %v, using rule-based fallback", err)
		} else {
			spec = e.parseModelFilters(raw)
		}
	}

	if spec.Empty() {
		e.applyRuleFallback(spec, query)
	}
	return spec
}

// parseModelFilters best-effort parses the model's JSON answer. Any
// parse failure discards the call entirely and returns an empty spec.
func (e *AttributeExtractor) parseModelFilters(raw string) *model.FilterSpec {
	var parsed extractedFilters
	if err := utils.ParseModelJSON(raw, &parsed); err != nil {
		log.Printf("Discarding unparsable filter response: %v", err)
		return &model.FilterSpec{}
	}

	spec := &model.FilterSpec{PriceMax: parsed.PriceMax}
	if parsed.PriceMax != nil && *parsed.PriceMax <= 0 {
		spec.PriceMax = nil
	}
	spec.Category = normalizeField(parsed.Category)
	spec.Material = normalizeField(parsed.Material)
	spec.Color = normalizeField(parsed.Color)
	spec.Size = normalizeField(parsed.Size)
	spec.Brand = parsed.Brand
	if spec.Brand != nil && (strings.TrimSpace(*spec.Brand) == "" || strings.EqualFold(*spec.Brand, "null")) {
		spec.Brand = nil
	}
	return spec
}

// normalizeField lower-cases a model string field and drops the "null"
// literal some models emit instead of omitting the key.
func normalizeField(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*v))
	if s == "" || s == "null" || s == "none" {
		return nil
	}
	return &s
}

// applyRuleFallback fills the spec from the utterance using the fixed
// keyword priority lists. Only nil fields are touched.
func (e *AttributeExtractor) applyRuleFallback(spec *model.FilterSpec, utterance string) {
	lower := strings.ToLower(utterance)

	if spec.PriceMax == nil {
		if m := pricePrefixRe.FindStringSubmatch(lower); m != nil {
			if v, ok := utils.ParsePrice(m[1]); ok {
				spec.PriceMax = &v
				log.Printf("Extracted price from fallback: %.0f", v)
			}
		} else if m := priceSuffixRe.FindStringSubmatch(lower); m != nil {
			if v, ok := utils.ParsePrice(m[1]); ok {
				spec.PriceMax = &v
				log.Printf("Extracted price from fallback: %.0f", v)
			}
		}
	}

	if spec.Size == nil {
		// large is checked before small on purpose
		if containsAny(lower, largeSizeWords) {
			size := "large"
			spec.Size = &size
		} else if containsAny(lower, smallSizeWords) {
			size := "small"
			spec.Size = &size
		}
	}

	if spec.Color == nil {
		for _, color := range fallbackColors {
			if strings.Contains(lower, color) {
				c := color
				spec.Color = &c
				break
			}
		}
	}

	if spec.Material == nil {
		for _, material := range fallbackMaterials {
			if strings.Contains(lower, material) {
				m := strings.ReplaceAll(material, "wooden", "wood")
				spec.Material = &m
				break
			}
		}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
