package service

import (
	"fmt"
	"log"
	"strings"

	"concierge/internal/model"
	"concierge/internal/utils"
)

// Size keyword sets. Size has no metadata fallback: a size constraint
// that the title doesn't confirm is a rejection.
var (
	largeTitleWords = []string{"large", "oversized", "big", "xl", "king", "queen"}
	smallTitleWords = []string{"small", "compact", "mini", "twin"}
)

// FilterDecision is the per-product outcome of one filter pass.
type FilterDecision struct {
	Product model.Product
	Keep    bool
	Reasons []string
}

// FilterEngine applies a FilterSpec against a product list. It is pure
// and order-preserving: survivors keep their original relative order,
// and an all-nil spec returns the input unchanged.
type FilterEngine struct{}

// NewFilterEngine creates a new filter engine
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

// Apply returns the products that satisfy the spec, logging each
// rejection with its reasons.
func (f *FilterEngine) Apply(products []model.Product, spec *model.FilterSpec) []model.Product {
	kept := make([]model.Product, 0, len(products))
	for _, d := range f.Evaluate(products, spec) {
		if d.Keep {
			kept = append(kept, d.Product)
		} else {
			log.Printf("Filtered out: %.60s (%s)", d.Product.Title, strings.Join(d.Reasons, ", "))
		}
	}
	return kept
}

// Evaluate runs every product through the predicate chain, recording a
// keep/reject decision with reasons. Predicates run cheapest and most
// decisive first and short-circuit on the first failure:
// price_max, color, size, material, brand.
func (f *FilterEngine) Evaluate(products []model.Product, spec *model.FilterSpec) []FilterDecision {
	decisions := make([]FilterDecision, 0, len(products))

	for _, p := range products {
		d := FilterDecision{Product: p, Keep: true}

		if d.Keep && spec != nil && spec.PriceMax != nil {
			if price, ok := utils.ParsePrice(deref(p.Price)); ok && price > *spec.PriceMax {
				d.Keep = false
				d.Reasons = append(d.Reasons, fmt.Sprintf("price $%.2f > $%.0f", price, *spec.PriceMax))
			}
			// missing or unparsable price always passes
		}

		if d.Keep && spec != nil && spec.Color != nil {
			if !matchesTitleOrMeta(p.Title, p.Color, *spec.Color) {
				d.Keep = false
				d.Reasons = append(d.Reasons, fmt.Sprintf("color doesn't match %q", *spec.Color))
			}
		}

		if d.Keep && spec != nil && spec.Size != nil {
			if !matchesSize(p.Title, *spec.Size) {
				d.Keep = false
				d.Reasons = append(d.Reasons, "not "+*spec.Size)
			}
		}

		if d.Keep && spec != nil && spec.Material != nil {
			if !matchesTitleOrMeta(p.Title, p.Material, *spec.Material) {
				d.Keep = false
				d.Reasons = append(d.Reasons, fmt.Sprintf("material doesn't match %q", *spec.Material))
			}
		}

		// Brand lives only in metadata; titles often embed unrelated
		// brand-like tokens.
		if d.Keep && spec != nil && spec.Brand != nil {
			if p.Brand == nil || !strings.Contains(strings.ToLower(*p.Brand), strings.ToLower(*spec.Brand)) {
				d.Keep = false
				d.Reasons = append(d.Reasons, fmt.Sprintf("brand doesn't match %q", *spec.Brand))
			}
		}

		decisions = append(decisions, d)
	}

	return decisions
}

// matchesTitleOrMeta reports whether the requested value appears
// case-insensitively in the title or the metadata field; either location
// passes.
func matchesTitleOrMeta(title string, meta *string, requested string) bool {
	want := strings.ToLower(requested)
	if strings.Contains(strings.ToLower(title), want) {
		return true
	}
	if meta != nil && strings.Contains(strings.ToLower(*meta), want) {
		return true
	}
	return false
}

func matchesSize(title, size string) bool {
	lower := strings.ToLower(title)
	switch size {
	case "large":
		return containsAny(lower, largeTitleWords)
	case "small":
		return containsAny(lower, smallTitleWords)
	default:
		// unknown size value constrains nothing
		return true
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
