package models

import (
	"sort"
	"strings"
)

// Facet keys understood by the job list.
const (
	FacetEmploymentType  = "employmentType"
	FacetExperienceLevel = "experienceLevel"
	FacetTag             = "tag"
	FacetLocation        = "location"
)

// FacetSelection maps a facet key to its selected values. Values keep the
// order they were selected in, but only membership is significant. A key that
// is absent means no filter on that facet.
type FacetSelection map[string][]string

// Has reports whether value is selected for key.
func (s FacetSelection) Has(key, value string) bool {
	for _, v := range s[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Add selects value for key with surrounding spaces removed. Adding a value
// twice is a no-op.
func (s FacetSelection) Add(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" || s.Has(key, value) {
		return
	}
	s[key] = append(s[key], value)
}

// Toggle flips the membership of value for key and reports whether it is
// selected afterwards. A facet left with no values is deleted.
func (s FacetSelection) Toggle(key, value string) bool {
	value = strings.TrimSpace(value)
	values := s[key]
	for i, v := range values {
		if v == value {
			rest := make([]string, 0, len(values)-1)
			rest = append(rest, values[:i]...)
			rest = append(rest, values[i+1:]...)
			if len(rest) == 0 {
				delete(s, key)
			} else {
				s[key] = rest
			}
			return false
		}
	}
	s.Add(key, value)
	return true
}

// Keys returns the facet keys in sorted order.
func (s FacetSelection) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal compares two selections by membership, ignoring value order.
func (s FacetSelection) Equal(other FacetSelection) bool {
	if len(s) != len(other) {
		return false
	}
	for k, values := range s {
		ov, ok := other[k]
		if !ok || len(ov) != len(values) {
			return false
		}
		for _, v := range values {
			if !other.Has(k, v) {
				return false
			}
		}
	}
	return true
}

// PageState is the pagination position of a list view.
// Index is 1-based and always within [1, max(1, TotalPages)].
type PageState struct {
	Index      int `json:"index"`
	Size       int `json:"size"`
	TotalPages int `json:"totalPages"`
}
