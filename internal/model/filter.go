package model

type (
	StockFilter     string
	PriceType       string
	VariationFilter string
	SortField       string
	SortOrder       string
)

const (
	StockAll        StockFilter = "all"
	StockInStock    StockFilter = "in_stock"
	StockLowStock   StockFilter = "low_stock"
	StockOutOfStock StockFilter = "out_of_stock"

	PriceRetail    PriceType = "retail"
	PriceWholesale PriceType = "wholesale"

	VariationsAll     VariationFilter = "all"
	VariationsWith    VariationFilter = "with_variations"
	VariationsWithout VariationFilter = "without_variations"

	SortByTitle SortField = "title"
	SortByPrice SortField = "price"
	SortByStock SortField = "stock"
	SortBySKU   SortField = "sku"

	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type PriceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// FilterSpec describes what a reader wants to see. Empty slices place no
// restriction on that dimension.
type FilterSpec struct {
	StockStatus  StockFilter     `json:"stock_status" validate:"oneof=all in_stock low_stock out_of_stock"`
	PriceRange   PriceRange      `json:"price_range"`
	PriceType    PriceType       `json:"price_type" validate:"oneof=retail wholesale"`
	Categories   []string        `json:"categories"`
	CategoryOnes []string        `json:"category_ones"`
	CategoryTwos []string        `json:"category_twos"`
	Colors       []string        `json:"colors"`
	Variations   VariationFilter `json:"variations" validate:"oneof=all with_variations without_variations"`
	SearchQuery  string          `json:"search_query" validate:"max=200"`
	SortBy       SortField       `json:"sort_by" validate:"oneof=title price stock sku"`
	SortOrder    SortOrder       `json:"sort_order" validate:"oneof=asc desc"`
}

func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		StockStatus: StockAll,
		PriceRange:  PriceRange{Min: 0, Max: 10000},
		PriceType:   PriceRetail,
		Variations:  VariationsAll,
		SortBy:      SortByTitle,
		SortOrder:   SortAsc,
	}
}
