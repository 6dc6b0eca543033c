package catalog

import (
	"reflect"
	"strings"
	"testing"

	"go-feed-catalog/internal/model"
)

func product(sku string, status model.StockStatus, qty int, price, wholesale float64) model.Product {
	return model.Product{
		ProductFeedItem: model.ProductFeedItem{SKU: sku, Images: []string{}},
		StockQuantity:   qty,
		StockStatus:     status,
		Price:           price,
		WholesalePrice:  wholesale,
	}
}

func TestCalculateStats(t *testing.T) {
	products := []model.Product{
		product("A", model.InStock, 20, 10.10, 2.50),
		product("B", model.LowStock, 3, 20.20, 1.333),
		product("C", model.OutOfStock, 0, 0, 9),
		product("D", model.OutOfStock, 0, 5.005, 0),
	}
	got := CalculateStats(products)
	want := model.DashboardStats{
		TotalProducts:       4,
		InStock:             1,
		LowStock:            1,
		OutOfStock:          2,
		AveragePrice:        11.77, // 35.305 / 3
		TotalInventoryValue: 54,    // 50 + 3.999
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCalculateStats_NoPricedProducts(t *testing.T) {
	got := CalculateStats([]model.Product{product("A", model.OutOfStock, 0, 0, 0)})
	if got.AveragePrice != 0 || got.TotalProducts != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if empty := CalculateStats(nil); empty != (model.DashboardStats{}) {
		t.Fatalf("empty input should give zero stats, got %+v", empty)
	}
}

func TestExtractFacets(t *testing.T) {
	products := []model.Product{
		{ProductFeedItem: model.ProductFeedItem{SKU: "1", Category: "Garden", CategoryOne: "Outdoor", CategoryTwo: "Chairs", Colour: " Red "}},
		{ProductFeedItem: model.ProductFeedItem{SKU: "2", Category: "Home", CategoryOne: "Outdoor", Colour: "red"}},
		{ProductFeedItem: model.ProductFeedItem{SKU: "3", Category: "Garden", Colour: "Blue"}},
		{ProductFeedItem: model.ProductFeedItem{SKU: "4", Colour: "   "}},
	}
	got := ExtractFacets(products)
	want := model.Facets{
		Categories:   []string{"Garden", "Home"},
		CategoryOnes: []string{"Outdoor"},
		CategoryTwos: []string{"Chairs"},
		Colors:       []string{"blue", "red"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCalculatePrice_Defaults(t *testing.T) {
	got := CalculatePrice(model.DefaultPriceInput(10))
	// selling 13.00, ebay 1.677, paypal 0.377 + 0.30
	want := model.PriceBreakdown{
		WholesalePrice: 10,
		SellingPrice:   13,
		EbayFee:        1.68,
		PaypalFee:      0.68,
		TotalFees:      2.35,
		Profit:         0.65,
		ROI:            6.46,
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCalculatePrice_ZeroWholesale(t *testing.T) {
	got := CalculatePrice(model.DefaultPriceInput(0))
	if got.ROI != 0 || got.SellingPrice != 0 || got.Profit != -0.3 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestDescription(t *testing.T) {
	p := model.Product{ProductFeedItem: model.ProductFeedItem{
		ShortDescription: "<p>Sturdy &amp; light</p>",
		LongDescription:  "<ul><li>Oak</li><li>Steel</li></ul><script>alert(1)</script>",
	}}
	plain := Description(p, FormatPlain)
	if plain != "Sturdy & light\n\nOakSteel" {
		t.Fatalf("unexpected plain description: %q", plain)
	}
	html := Description(p, FormatHTML)
	if !strings.Contains(html, "</p><br><br><ul>") {
		t.Fatalf("unexpected html description: %q", html)
	}
	if got := Description(model.Product{}, FormatPlain); got != "" {
		t.Fatalf("expected empty description, got %q", got)
	}
}
