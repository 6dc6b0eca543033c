package model

type DashboardStats struct {
	TotalProducts       int     `json:"total_products"`
	InStock             int     `json:"in_stock"`
	LowStock            int     `json:"low_stock"`
	OutOfStock          int     `json:"out_of_stock"`
	AveragePrice        float64 `json:"average_price"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
}

// Facets lists the distinct values readers can filter on.
type Facets struct {
	Categories   []string `json:"categories"`
	CategoryOnes []string `json:"category_ones"`
	CategoryTwos []string `json:"category_twos"`
	Colors       []string `json:"colors"`
}

// PriceInput feeds the resale calculator. Percentages are whole numbers
// (30 means 30%).
type PriceInput struct {
	WholesalePrice float64 `json:"wholesale_price" validate:"gte=0"`
	MarkupPercent  float64 `json:"markup_percent" validate:"gte=0,lte=1000"`
	EbayFeePercent float64 `json:"ebay_fee_percent" validate:"gte=0,lte=100"`
	PaypalPercent  float64 `json:"paypal_fee_percent" validate:"gte=0,lte=100"`
	PaypalFixedFee float64 `json:"paypal_fixed_fee" validate:"gte=0,lte=1000"`
}

func DefaultPriceInput(wholesale float64) PriceInput {
	return PriceInput{
		WholesalePrice: wholesale,
		MarkupPercent:  30,
		EbayFeePercent: 12.9,
		PaypalPercent:  2.9,
		PaypalFixedFee: 0.30,
	}
}

type PriceBreakdown struct {
	WholesalePrice float64 `json:"wholesale_price"`
	SellingPrice   float64 `json:"selling_price"`
	EbayFee        float64 `json:"ebay_fee"`
	PaypalFee      float64 `json:"paypal_fee"`
	TotalFees      float64 `json:"total_fees"`
	Profit         float64 `json:"profit"`
	ROI            float64 `json:"roi"`
}
