package server

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/recera/famtree/pkg/search"
)

const maxSuggestions = 3

// Suggest returns up to n labels close to a query that matched nothing.
// A label scores the smallest edit distance between the query and any of
// its words; labels further than half the query length are dropped. Ties
// keep index order.
func Suggest(options []search.Option, query string, n int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || n <= 0 {
		return nil
	}
	limit := utf8.RuneCountInString(q)/2 + 1

	type scored struct {
		label string
		dist  int
	}
	var hits []scored
	for _, o := range options {
		best := -1
		for _, w := range strings.Fields(strings.ToLower(o.Label)) {
			if d := levenshtein.ComputeDistance(q, w); best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 && best <= limit {
			hits = append(hits, scored{o.Label, best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, 0, min(n, len(hits)))
	for _, h := range hits {
		if len(out) == n {
			break
		}
		out = append(out, h.label)
	}
	return out
}
