// Package query holds the pure search, filter and aggregation steps applied to
// a batch list before it is displayed or exported.
package query

import (
	"strings"

	"batchdesk/internal/core"
)

// Sentinel selector values meaning "no filter".
const (
	AllCategories = "All Categories"
	AllClasses    = "All Classes"
)

// Criteria is one dashboard request: free text plus the two selectors.
// Empty selectors behave like the sentinels.
type Criteria struct {
	Search   string
	Category string
	Class    string
}

// Search keeps batches whose name or id contains q, ignoring case. Only an
// empty q returns the input unchanged; whitespace in q is matched literally.
func Search(batches []core.Batch, q string) []core.Batch {
	if q == "" {
		return batches
	}
	q = strings.ToLower(q)
	out := make([]core.Batch, 0, len(batches))
	for _, b := range batches {
		if strings.Contains(strings.ToLower(b.Name), q) || strings.Contains(strings.ToLower(b.ID), q) {
			out = append(out, b)
		}
	}
	return out
}

func FilterByCategory(batches []core.Batch, category string) []core.Batch {
	if isAll(category, AllCategories) {
		return batches
	}
	return filter(batches, func(b core.Batch) bool { return b.Category == category })
}

func FilterByClass(batches []core.Batch, class string) []core.Batch {
	if isAll(class, AllClasses) {
		return batches
	}
	return filter(batches, func(b core.Batch) bool { return b.ClassGrade == class })
}

// Apply runs search, then the category filter, then the class filter.
func Apply(batches []core.Batch, c Criteria) []core.Batch {
	return FilterByClass(FilterByCategory(Search(batches, c.Search), c.Category), c.Class)
}

// CategoryOptions lists the category selector entries for an already searched list.
func CategoryOptions(searched []core.Batch) []string {
	return append([]string{AllCategories}, distinct(searched, ByCategory)...)
}

// ClassOptions lists the class selector entries. Classes come from the
// category-filtered list so that no option selects an empty result.
func ClassOptions(searched []core.Batch, category string) []string {
	return append([]string{AllClasses}, distinct(FilterByCategory(searched, category), ByClass)...)
}

// Normalize returns c with the selectors reset to their sentinels when they
// are blank or no longer offered by the options for searched.
func Normalize(searched []core.Batch, c Criteria) Criteria {
	if !contains(CategoryOptions(searched), c.Category) {
		c.Category = AllCategories
	}
	if !contains(ClassOptions(searched, c.Category), c.Class) {
		c.Class = AllClasses
	}
	return c
}

func isAll(v, sentinel string) bool {
	return v == "" || v == sentinel
}

func filter(batches []core.Batch, keep func(core.Batch) bool) []core.Batch {
	out := make([]core.Batch, 0, len(batches))
	for _, b := range batches {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func distinct(batches []core.Batch, key KeyFunc) []string {
	seen := make(map[string]struct{}, len(batches))
	var out []string
	for _, b := range batches {
		k := key(b)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
