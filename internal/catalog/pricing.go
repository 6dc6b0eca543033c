package catalog

import (
	"go-feed-catalog/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculatePrice works out a resale price from the wholesale cost, a markup
// and marketplace plus payment fees.
func CalculatePrice(in model.PriceInput) model.PriceBreakdown {
	wholesale := decimal.NewFromFloat(in.WholesalePrice)
	markup := decimal.NewFromFloat(in.MarkupPercent).Div(hundred)

	selling := wholesale.Mul(decimal.NewFromInt(1).Add(markup))
	ebayFee := selling.Mul(decimal.NewFromFloat(in.EbayFeePercent).Div(hundred))
	paypalFee := selling.Mul(decimal.NewFromFloat(in.PaypalPercent).Div(hundred)).
		Add(decimal.NewFromFloat(in.PaypalFixedFee))
	fees := ebayFee.Add(paypalFee)
	profit := selling.Sub(wholesale).Sub(fees)

	roi := decimal.Zero
	if wholesale.IsPositive() {
		roi = profit.Div(wholesale).Mul(hundred)
	}

	return model.PriceBreakdown{
		WholesalePrice: Round2(wholesale),
		SellingPrice:   Round2(selling),
		EbayFee:        Round2(ebayFee),
		PaypalFee:      Round2(paypalFee),
		TotalFees:      Round2(fees),
		Profit:         Round2(profit),
		ROI:            Round2(roi),
	}
}
