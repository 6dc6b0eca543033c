package query

import (
	"regexp"
	"sort"
	"strings"

	"go-feed-catalog/internal/model"
)

// Substring hits at or above this count are treated as too loose and the
// search falls back to fuzzy matching.
const fuzzyFallbackLimit = 500

var (
	skuDashPattern = regexp.MustCompile(`-[A-Za-z0-9]`)
	skuCharset     = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	hasDigit       = regexp.MustCompile(`\d`)
)

// LooksLikeSKU reports whether a query reads as a product code rather than
// free text, e.g. "83B-147V00WT" or "B31P012".
func LooksLikeSKU(query string) bool {
	q := strings.TrimSpace(query)
	if skuDashPattern.MatchString(q) {
		return true
	}
	return len(q) >= 5 && skuCharset.MatchString(q) && hasDigit.MatchString(q)
}

// Search narrows products to those matching the query. Direct substring
// hits are preferred; fuzzy matching is the fallback.
func Search(products []model.Product, query string, m Matcher) []model.Product {
	q := strings.TrimSpace(query)
	if q == "" {
		return products
	}
	lower := strings.ToLower(q)

	if LooksLikeSKU(q) {
		hits := filter(products, func(p *model.Product) bool {
			return strings.Contains(strings.ToLower(p.SKU), lower)
		})
		if len(hits) > 0 {
			return hits
		}
		return fuzzy(products, q, m, func(p *model.Product) []string {
			return []string{p.SKU, p.Title}
		})
	}

	hits := filter(products, func(p *model.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), lower) ||
			strings.Contains(strings.ToLower(p.SKU), lower)
	})
	if len(hits) > 0 && len(hits) < fuzzyFallbackLimit {
		return hits
	}
	return fuzzy(products, q, m, func(p *model.Product) []string {
		return []string{p.SKU, p.Title, p.ShortDescription, p.LongDescription}
	})
}

func fuzzy(products []model.Product, q string, m Matcher, fields func(*model.Product) []string) []model.Product {
	var hits []scored
	for i := range products {
		if s, ok := bestScore(m, q, fields(&products[i])...); ok {
			hits = append(hits, scored{index: i, score: s})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score < hits[b].score
	})

	out := make([]model.Product, 0, len(hits))
	for _, h := range hits {
		out = append(out, products[h.index])
	}
	return out
}
