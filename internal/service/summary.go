package service

import (
	"regexp"
	"sort"
	"strings"
)

// featurePattern scans combined title+description text for a sellable
// attribute. Lower priority surfaces first in the feature list.
type featurePattern struct {
	re       *regexp.Regexp
	priority int
}

var featurePatterns = []featurePattern{
	{regexp.MustCompile(`(?i)(\d+\s*(?:drawer|shelf|shelves|tier|piece|seater|seat)s?)`), 1},
	{regexp.MustCompile(`(?i)(adjustable|foldable|convertible|extendable|reclining)`), 1},
	{regexp.MustCompile(`(?i)(storage|space-saving)`), 1},
	{regexp.MustCompile(`(?i)(ergonomic|lumbar support)`), 1},
	{regexp.MustCompile(`(?i)(upholstered|cushioned|padded)`), 1},
	{regexp.MustCompile(`(?i)(leather|velvet|linen|wood|metal)`), 2},
	{regexp.MustCompile(`(?i)(modular|sectional)`), 1},
}

const maxKeyFeatures = 4

// GenerateSummary derives display features and a use-case line from a
// product's title and description. Purely lexical, no model calls.
func GenerateSummary(title, description string) ([]string, string) {
	text := strings.ToLower(title + " " + description)

	type found struct {
		text     string
		priority int
	}
	var hits []found
	for _, p := range featurePatterns {
		if m := p.re.FindString(text); m != "" {
			hits = append(hits, found{m, p.priority})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].priority < hits[j].priority })

	var features []string
	seen := make(map[string]bool)
	for _, h := range hits {
		key := strings.ToLower(strings.TrimSpace(h.text))
		if seen[key] || len(features) >= maxKeyFeatures {
			continue
		}
		seen[key] = true
		features = append(features, titleCase(h.text))
	}
	if len(features) == 0 {
		features = []string{"Quality Construction", "Stylish Design"}
	}

	return features, bestForLine(title)
}

func bestForLine(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "sofa") || strings.Contains(t, "couch"):
		return "Perfect for living room relaxation"
	case strings.Contains(t, "bed"):
		return "Ideal for comfortable sleeping"
	case strings.Contains(t, "chair"):
		return "Comfortable seating"
	case strings.Contains(t, "table"):
		return "Functional surface for any space"
	default:
		return "Enhance your living space"
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
