package catalog

import (
	"go-feed-catalog/internal/model"

	"github.com/shopspring/decimal"
)

// CalculateStats aggregates counts and money totals in one pass. Money is
// summed as decimals and rounded half-up to two places.
func CalculateStats(products []model.Product) model.DashboardStats {
	stats := model.DashboardStats{TotalProducts: len(products)}

	priceSum := decimal.Zero
	priced := 0
	inventory := decimal.Zero

	for i := range products {
		p := &products[i]
		switch p.StockStatus {
		case model.InStock:
			stats.InStock++
		case model.LowStock:
			stats.LowStock++
		case model.OutOfStock:
			stats.OutOfStock++
		}
		if p.Price > 0 {
			priceSum = priceSum.Add(decimal.NewFromFloat(p.Price))
			priced++
		}
		inventory = inventory.Add(decimal.NewFromFloat(p.WholesalePrice).Mul(decimal.NewFromInt(int64(p.StockQuantity))))
	}

	if priced > 0 {
		stats.AveragePrice = Round2(priceSum.Div(decimal.NewFromInt(int64(priced))))
	}
	stats.TotalInventoryValue = Round2(inventory)
	return stats
}

func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
