package core

import "strings"

// FilterCriteria holds the active filter predicates.
// Blank strings and an unset Gender impose no constraint.
type FilterCriteria struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender,omitempty"`
	City   string `json:"city"`
}

// IsEmpty reports whether no predicate is active.
func (c FilterCriteria) IsEmpty() bool {
	return strings.TrimSpace(c.Name) == "" && c.Gender == "" && strings.TrimSpace(c.City) == ""
}

// Filter returns the records matching all active predicates, preserving order.
// The input slice is never modified.
func Filter(records []Record, c FilterCriteria) []Record {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	city := strings.ToLower(strings.TrimSpace(c.City))

	result := make([]Record, 0, len(records))
	for _, r := range records {
		if name != "" && !strings.Contains(strings.ToLower(r.FullName()), name) {
			continue
		}
		if c.Gender != "" && r.Gender != c.Gender {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(r.Address.City), city) {
			continue
		}
		result = append(result, r)
	}
	return result
}
