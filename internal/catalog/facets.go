package catalog

import (
	"sort"
	"strings"

	"go-feed-catalog/internal/model"
)

// ExtractFacets collects the distinct category levels and colours. Colours
// are trimmed and lower-cased; empty values never appear.
func ExtractFacets(products []model.Product) model.Facets {
	categories := map[string]struct{}{}
	ones := map[string]struct{}{}
	twos := map[string]struct{}{}
	colors := map[string]struct{}{}

	for i := range products {
		p := &products[i]
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		if p.CategoryOne != "" {
			ones[p.CategoryOne] = struct{}{}
		}
		if p.CategoryTwo != "" {
			twos[p.CategoryTwo] = struct{}{}
		}
		if c := strings.ToLower(strings.TrimSpace(p.Colour)); c != "" {
			colors[c] = struct{}{}
		}
	}

	return model.Facets{
		Categories:   sortedKeys(categories),
		CategoryOnes: sortedKeys(ones),
		CategoryTwos: sortedKeys(twos),
		Colors:       sortedKeys(colors),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
