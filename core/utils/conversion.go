package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseIntSet parses a comma separated list of integers ("1001, 1002") into a set.
// Empty input yields an empty set.
func ParseIntSet(raw string) (map[int]struct{}, error) {
	set := make(map[int]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", part, err)
		}
		set[n] = struct{}{}
	}
	return set, nil
}

// ParseIntMap parses "101:SAW,102:CNC" into a map of integer keys to upper-cased values.
func ParseIntMap(raw string) (map[int]string, error) {
	out := make(map[int]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid pair %q: expected key:value", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("invalid key in %q: %w", part, err)
		}
		value = strings.ToUpper(strings.TrimSpace(value))
		if value == "" {
			return nil, fmt.Errorf("empty value for key %d", n)
		}
		out[n] = value
	}
	return out, nil
}

// SortedKeys returns the keys of an int-keyed map in ascending order.
func SortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ScaleDimension converts a raw source measurement to ledger units by dividing by divisor.
// A zero divisor leaves the value unscaled.
func ScaleDimension(raw decimal.Decimal, divisor decimal.Decimal) decimal.Decimal {
	if divisor.IsZero() {
		return raw
	}
	return raw.Div(divisor)
}
