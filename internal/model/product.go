package model

type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	LowStock   StockStatus = "low_stock"
	OutOfStock StockStatus = "out_of_stock"
)

// ProductFeedItem is one row of the descriptive product feed.
type ProductFeedItem struct {
	SKU              string   `json:"sku"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	Images           []string `json:"images"`
	Category         string   `json:"category"`
	Colour           string   `json:"colour"`
	CategoryOne      string   `json:"category_one"`
	CategoryTwo      string   `json:"category_two"`
	PSIN             string   `json:"psin"`
}

// StockFeedItem is one row of the stock / price feed.
type StockFeedItem struct {
	SKU            string      `json:"sku"`
	StockQuantity  int         `json:"stock_quantity"`
	StockStatus    StockStatus `json:"stock_status"`
	Price          float64     `json:"price"`
	WholesalePrice float64     `json:"wholesale_price"`
}

// Product is the merged record served to readers. One per distinct
// product feed SKU.
type Product struct {
	ProductFeedItem
	StockQuantity  int         `json:"stock_quantity"`
	StockStatus    StockStatus `json:"stock_status"`
	Price          float64     `json:"price"`
	WholesalePrice float64     `json:"wholesale_price"`
	HasVariations  bool        `json:"has_variations"`
	VariationGroup string      `json:"variation_group,omitempty"`
}

// PriceFor returns the retail price or, when wholesale is set, the
// wholesale price.
func (p *Product) PriceFor(t PriceType) float64 {
	if t == PriceWholesale {
		return p.WholesalePrice
	}
	return p.Price
}
