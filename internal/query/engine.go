package query

import (
	"strings"

	"go-feed-catalog/internal/model"
)

// Engine applies a FilterSpec to a product generation. It never modifies
// the products it is given.
type Engine struct {
	matcher Matcher
}

func NewEngine(m Matcher) *Engine {
	if m == nil {
		m = NewFuzzyMatcher()
	}
	return &Engine{matcher: m}
}

// Apply runs the filters, then the search, then the sort and returns a new
// slice.
func (e *Engine) Apply(products []model.Product, spec model.FilterSpec) []model.Product {
	categories := toSet(spec.Categories, false)
	ones := toSet(spec.CategoryOnes, false)
	twos := toSet(spec.CategoryTwos, false)
	colors := toSet(spec.Colors, true)

	out := filter(products, func(p *model.Product) bool {
		if spec.StockStatus != "" && spec.StockStatus != model.StockAll &&
			string(p.StockStatus) != string(spec.StockStatus) {
			return false
		}
		price := p.PriceFor(spec.PriceType)
		if price < spec.PriceRange.Min || price > spec.PriceRange.Max {
			return false
		}
		if categories != nil && !categories[p.Category] {
			return false
		}
		if ones != nil && !ones[p.CategoryOne] {
			return false
		}
		if twos != nil && !twos[p.CategoryTwo] {
			return false
		}
		if colors != nil && !colors[strings.ToLower(strings.TrimSpace(p.Colour))] {
			return false
		}
		switch spec.Variations {
		case model.VariationsWith:
			return p.HasVariations
		case model.VariationsWithout:
			return !p.HasVariations
		}
		return true
	})

	if strings.TrimSpace(spec.SearchQuery) != "" {
		out = Search(out, spec.SearchQuery, e.matcher)
	}

	Sort(out, spec.SortBy, spec.SortOrder, spec.PriceType)
	return out
}

// filter copies the products that pass keep into a new slice.
func filter(products []model.Product, keep func(*model.Product) bool) []model.Product {
	out := make([]model.Product, 0, len(products))
	for i := range products {
		if keep(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func toSet(values []string, fold bool) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if fold {
			v = strings.ToLower(strings.TrimSpace(v))
		}
		set[v] = true
	}
	return set
}
