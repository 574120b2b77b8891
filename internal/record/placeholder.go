// Package record turns raw extractor output into candidates and merges two
// candidates into one canonical company record.
package record

import "strings"

// PlaceholderSet holds strings that mean "no data". Membership is checked on
// the trimmed, lower-cased value.
type PlaceholderSet map[string]struct{}

// NewPlaceholderSet builds a set from the given values.
func NewPlaceholderSet(values ...string) PlaceholderSet {
	s := make(PlaceholderSet, len(values))
	for _, v := range values {
		s[normalize(v)] = struct{}{}
	}
	return s
}

// DefaultPlaceholders is the merge placeholder list.
func DefaultPlaceholders() PlaceholderSet {
	return NewPlaceholderSet("not specified", "not provided")
}

// Contains reports whether s is a placeholder. Blank strings always are.
func (p PlaceholderSet) Contains(s string) bool {
	n := normalize(s)
	if n == "" {
		return true
	}
	_, ok := p[n]
	return ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
