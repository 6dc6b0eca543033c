package catalog

import (
	"strings"

	"go-feed-catalog/internal/model"
)

// Merge joins product rows with stock rows on a case-insensitive SKU and
// marks variation groups. Stock rows without a product row are dropped.
// A product SKU that repeats keeps the position of its first row and the
// data of its last row.
func Merge(products []model.ProductFeedItem, stock []model.StockFeedItem) []model.Product {
	stockBySKU := make(map[string]model.StockFeedItem, len(stock))
	for _, s := range stock {
		stockBySKU[strings.ToLower(s.SKU)] = s
	}

	unique := dedupeProducts(products)

	groupSize := make(map[string]int, len(unique))
	for _, p := range unique {
		groupSize[BaseSKU(p.SKU)]++
	}

	merged := make([]model.Product, 0, len(unique))
	for _, p := range unique {
		out := model.Product{
			ProductFeedItem: p,
			StockStatus:     model.OutOfStock,
		}
		if s, ok := stockBySKU[strings.ToLower(p.SKU)]; ok {
			out.StockQuantity = s.StockQuantity
			out.StockStatus = s.StockStatus
			out.Price = s.Price
			out.WholesalePrice = s.WholesalePrice
		}
		if base := BaseSKU(p.SKU); groupSize[base] > 1 {
			out.HasVariations = true
			out.VariationGroup = base
		}
		merged = append(merged, out)
	}
	return merged
}

func dedupeProducts(products []model.ProductFeedItem) []model.ProductFeedItem {
	index := make(map[string]int, len(products))
	unique := make([]model.ProductFeedItem, 0, len(products))
	for _, p := range products {
		key := strings.ToLower(p.SKU)
		if i, seen := index[key]; seen {
			unique[i] = p
			continue
		}
		index[key] = len(unique)
		unique = append(unique, p)
	}
	return unique
}

// Variations returns the other members of a product's variation group in
// catalog order.
func Variations(products []model.Product, sku string) []model.Product {
	var group string
	for i := range products {
		if strings.EqualFold(products[i].SKU, sku) {
			group = products[i].VariationGroup
			break
		}
	}
	out := []model.Product{}
	if group == "" {
		return out
	}
	for _, p := range products {
		if p.VariationGroup == group && !strings.EqualFold(p.SKU, sku) {
			out = append(out, p)
		}
	}
	return out
}
