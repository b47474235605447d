package core

import (
	"strconv"
	"strings"
)

// DefaultCategories is the category set offered when none is configured.
var DefaultCategories = []string{"NEET", "JEE", "FOUNDATION", "SSC"}

// Catalog is the ordered set of known batch categories.
//
// Older sheets stored the 1-based position of the category instead of its
// name, so Resolve maps such codes back to names.
type Catalog struct {
	names []string
}

func NewCatalog(names []string) Catalog {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToUpper(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return Catalog{names: out}
}

// Names returns the categories in configured order.
func (c Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Resolve normalises a stored category value. Known names are returned in their
// canonical spelling, numeric codes are translated, anything else is kept as free text.
func (c Catalog) Resolve(v string) string {
	v = strings.TrimSpace(v)
	for _, n := range c.names {
		if strings.EqualFold(n, v) {
			return n
		}
	}
	if code, err := strconv.Atoi(v); err == nil && code >= 1 && code <= len(c.names) {
		return c.names[code-1]
	}
	return v
}

// Contains reports whether v names a configured category.
func (c Catalog) Contains(v string) bool {
	for _, n := range c.names {
		if strings.EqualFold(n, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
