// Package view derives display state from a loaded record list: status
// counts, the observed category vocabulary, and combined filtering. All
// functions are pure; they never touch the store.
package view

import (
	"sort"
	"strings"

	"github.com/minhhq2805/prefdash/internal/models"
)

// All is the wildcard value accepted by the category and status filters.
const All = "all"

// Counts aggregates records by status.
type Counts struct {
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Count tallies the status of every record.
func Count(records []models.Record) Counts {
	var c Counts
	for _, rec := range records {
		switch rec.Status {
		case models.StatusPending:
			c.Pending++
		case models.StatusActive:
			c.Active++
		case models.StatusInactive:
			c.Inactive++
		}
	}
	return c
}

// Categories returns the distinct categories observed in the list,
// sorted. The selector's options follow the loaded data, not a fixed
// vocabulary.
func Categories(records []models.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if rec.Category == "" || seen[rec.Category] {
			continue
		}
		seen[rec.Category] = true
		out = append(out, rec.Category)
	}
	sort.Strings(out)
	return out
}

// Filter combines the three dashboard predicates. All of them must hold:
// a case-insensitive substring match of Search against category or ID,
// category equality (or the "all" wildcard), and status equality (or
// "all"). Zero values match everything.
type Filter struct {
	Search   string
	Category string
	Status   string
}

// Apply returns the records satisfying every predicate, preserving order.
func (f Filter) Apply(records []models.Record) []models.Record {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if !matchSearch(rec, search) {
			continue
		}
		if !matchValue(f.Category, rec.Category) {
			continue
		}
		if !matchValue(f.Status, string(rec.Status)) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchSearch(rec models.Record, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Category), search) ||
		strings.Contains(strings.ToLower(rec.ID), search)
}

func matchValue(want, got string) bool {
	return want == "" || want == All || want == got
}
