package common

import (
	"strconv"
	"strings"
)

// AtoiDefault converts value to an integer, falling back to def when the
// string is empty or unparsable.
func AtoiDefault(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

// NormalizeQty resolves a quantity input to a positive integer. Zero and
// negative values become 1: quantity fields may arrive empty while the
// shopper is still editing them, and an unresolved field prices as one unit.
func NormalizeQty(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}
