package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var priceTokenRe = regexp.MustCompile(`\d+\.?\d*`)

// ParsePrice extracts a numeric price from a display string such as
// "$1,299.99". Currency symbols and thousands separators are stripped
// before matching the first numeric token. Returns ok=false for empty,
// "N/A", or unparsable strings; callers must treat that as "no price",
// never as a filter rejection.
func ParsePrice(display string) (float64, bool) {
	if display == "" || display == "N/A" {
		return 0, false
	}

	cleaned := strings.NewReplacer("$", "", ",", "").Replace(display)
	token := priceTokenRe.FindString(cleaned)
	if token == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
