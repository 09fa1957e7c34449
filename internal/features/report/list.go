package report

import (
	"sort"
	"strings"

	"cxtrack/internal/features/catalog"
)

type SortBy string

const (
	SortByNewest    SortBy = "newest"
	SortByName      SortBy = "name"
	SortByFavorites SortBy = "favorites"
)

// ProjectList is the client-facing search/filter/sort over a report
// collection. It is a pure function of its inputs: identical arguments
// always yield an identical ordered list, and the input slice is never
// mutated.
func ProjectList(reports []CustomReport, query string, filterSource string, sortBy SortBy, cat *catalog.Catalog) []CustomReport {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]CustomReport, 0, len(reports))
	for _, r := range reports {
		if filterSource != "" && r.ReportConfig.DataSource != filterSource {
			continue
		}
		if q != "" && !matchesQuery(r, q, cat) {
			continue
		}
		out = append(out, r)
	}

	switch sortBy {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Name < out[j].Name
		})
	case SortByFavorites:
		// Favorites first, original (updated_at desc) order preserved within
		// each half.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].IsFavorite && !out[j].IsFavorite
		})
	default: // SortByNewest
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
	}

	return out
}

func matchesQuery(r CustomReport, q string, cat *catalog.Catalog) bool {
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	if r.Description != nil && strings.Contains(strings.ToLower(*r.Description), q) {
		return true
	}
	label := cat.SourceLabel(r.ReportConfig.DataSource)
	return strings.Contains(strings.ToLower(label), q)
}
