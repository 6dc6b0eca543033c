package catalog

import (
	"reflect"
	"testing"

	"go-feed-catalog/internal/model"
)

func feedItems(skus ...string) []model.ProductFeedItem {
	items := make([]model.ProductFeedItem, 0, len(skus))
	for _, s := range skus {
		items = append(items, model.ProductFeedItem{SKU: s, Title: "title " + s, Images: []string{}})
	}
	return items
}

func TestBaseSKU(t *testing.T) {
	cases := map[string]string{
		"ABC-123-BLK": "ABC-123",
		"CHAIR-blk":   "CHAIR",
		"TABLE-001":   "TABLE",
		"SOFA_XL":     "SOFA",
		"LAMP-ABCDE":  "LAMP-ABCDE",
		"B31P012":     "B31P012",
	}
	for in, want := range cases {
		if got := BaseSKU(in); got != want {
			t.Fatalf("BaseSKU(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMerge_VariationGroups(t *testing.T) {
	merged := Merge(feedItems("CHAIR-BLK", "CHAIR-RED", "TABLE-001"), nil)
	if len(merged) != 3 {
		t.Fatalf("expected 3 products, got %d", len(merged))
	}
	for _, p := range merged[:2] {
		if !p.HasVariations || p.VariationGroup != "CHAIR" {
			t.Fatalf("%s should be in group CHAIR: %+v", p.SKU, p)
		}
	}
	if merged[2].HasVariations || merged[2].VariationGroup != "" {
		t.Fatalf("TABLE-001 is a singleton: %+v", merged[2])
	}
}

func TestMerge_JoinAndDefaults(t *testing.T) {
	stock := []model.StockFeedItem{
		{SKU: "abc-123", StockQuantity: 1, StockStatus: model.LowStock, Price: 1, WholesalePrice: 1},
		{SKU: "ABC-123", StockQuantity: 5, StockStatus: model.LowStock, Price: 19.99, WholesalePrice: 9.99},
		{SKU: "ORPHAN", StockQuantity: 99, StockStatus: model.InStock, Price: 3},
	}
	merged := Merge(feedItems("ABC-123", "NOSTOCK"), stock)

	if len(merged) != 2 {
		t.Fatalf("stock-only SKUs must not produce products, got %d", len(merged))
	}
	got := merged[0]
	if got.StockQuantity != 5 || got.Price != 19.99 || got.WholesalePrice != 9.99 || got.StockStatus != model.LowStock {
		t.Fatalf("last stock row should win: %+v", got)
	}
	none := merged[1]
	if none.StockQuantity != 0 || none.StockStatus != model.OutOfStock || none.Price != 0 || none.WholesalePrice != 0 {
		t.Fatalf("unmatched product should carry defaults: %+v", none)
	}
}

func TestMerge_KeepsProductCasingAndDedupes(t *testing.T) {
	products := []model.ProductFeedItem{
		{SKU: "Mixed-Case", Title: "first", Images: []string{}},
		{SKU: "OTHER", Title: "other", Images: []string{}},
		{SKU: "mixed-case", Title: "second", Images: []string{}},
	}
	merged := Merge(products, []model.StockFeedItem{{SKU: "MIXED-CASE", StockQuantity: 20, StockStatus: model.InStock}})
	if len(merged) != 2 {
		t.Fatalf("expected duplicates to collapse, got %d", len(merged))
	}
	if merged[0].SKU != "mixed-case" || merged[0].Title != "second" || merged[0].StockQuantity != 20 {
		t.Fatalf("unexpected merged duplicate: %+v", merged[0])
	}
	if merged[1].SKU != "OTHER" {
		t.Fatalf("order not preserved: %+v", merged)
	}
}

func TestMerge_Deterministic(t *testing.T) {
	products := feedItems("A-1", "A-2", "B", "C_RED")
	stock := []model.StockFeedItem{{SKU: "b", StockQuantity: 3, StockStatus: model.LowStock}}
	first := Merge(products, stock)
	second := Merge(products, stock)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("merge is not deterministic")
	}
}

func TestVariations(t *testing.T) {
	merged := Merge(feedItems("CHAIR-BLK", "CHAIR-RED", "CHAIR-GRN", "TABLE-001"), nil)
	others := Variations(merged, "chair-red")
	if len(others) != 2 || others[0].SKU != "CHAIR-BLK" || others[1].SKU != "CHAIR-GRN" {
		t.Fatalf("unexpected variations: %+v", others)
	}
	if got := Variations(merged, "TABLE-001"); len(got) != 0 {
		t.Fatalf("singleton should have no variations, got %d", len(got))
	}
}
