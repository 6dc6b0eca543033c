package query

import (
	"cmp"
	"slices"

	"go-feed-catalog/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders products in place with a stable sort. Titles and SKUs are
// compared with English collation, so "apple" sorts before "Banana".
func Sort(products []model.Product, by model.SortField, order model.SortOrder, priceType model.PriceType) {
	// A collator keeps scratch buffers and is not safe to share.
	col := collate.New(language.English)

	compare := func(a, b *model.Product) int {
		switch by {
		case model.SortByPrice:
			return cmp.Compare(a.PriceFor(priceType), b.PriceFor(priceType))
		case model.SortByStock:
			return cmp.Compare(a.StockQuantity, b.StockQuantity)
		case model.SortBySKU:
			return col.CompareString(a.SKU, b.SKU)
		default:
			return col.CompareString(a.Title, b.Title)
		}
	}

	slices.SortStableFunc(products, func(a, b model.Product) int {
		c := compare(&a, &b)
		if order == model.SortDesc {
			return -c
		}
		return c
	})
}
