// internal/domain/product/filter.go
package product

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter selects products for the catalog view.
// Origin is an exact match ("" or AllOrigins disables it); Search is a
// case-insensitive substring match over name, description and origin.
// Both conditions must hold, so applying them in either order gives the same set.
type Filter struct {
	Origin string `json:"origin,omitempty"`
	Search string `json:"q,omitempty"`
}

// IsZero reports whether the filter lets every product through.
func (f Filter) IsZero() bool {
	o := strings.TrimSpace(f.Origin)
	return (o == "" || o == AllOrigins) && strings.TrimSpace(f.Search) == ""
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Product) bool {
	return f.matcher().match(p)
}

// Apply returns the products matching f, preserving input order.
// It never returns nil.
func (f Filter) Apply(src []Product) []Product {
	m := f.matcher()
	out := make([]Product, 0, len(src))
	for _, p := range src {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

type matcher struct {
	origin string
	needle string
	caser  cases.Caser // not safe for concurrent use; one per matcher
}

func (f Filter) matcher() *matcher {
	m := &matcher{caser: cases.Fold()}
	m.origin = strings.TrimSpace(f.Origin)
	if m.origin == AllOrigins {
		m.origin = ""
	}
	m.needle = m.caser.String(strings.TrimSpace(f.Search))
	return m
}

func (m *matcher) match(p Product) bool {
	if m.origin != "" && p.Origin != m.origin {
		return false
	}
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.caser.String(p.Name), m.needle) ||
		strings.Contains(m.caser.String(p.Description), m.needle) ||
		strings.Contains(m.caser.String(p.Origin), m.needle)
}
