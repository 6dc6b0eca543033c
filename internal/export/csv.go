package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-feed-catalog/internal/model"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"SKU",
	"Title",
	"Category",
	"Category One",
	"Category Two",
	"Colour",
	"Stock Status",
	"Stock Quantity",
	"Retail Price",
	"Wholesale Price",
	"Has Variations",
	"Image Count",
	"Primary Image",
	"PSIN",
}

// WriteCSV writes one row per product under a fixed header.
func WriteCSV(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range products {
		if err := cw.Write(csvRow(&products[i])); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", products[i].SKU, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(p *model.Product) []string {
	primary := ""
	if len(p.Images) > 0 {
		primary = p.Images[0]
	}
	return []string{
		p.SKU,
		p.Title,
		p.Category,
		p.CategoryOne,
		p.CategoryTwo,
		p.Colour,
		strings.ReplaceAll(string(p.StockStatus), "_", " "),
		strconv.Itoa(p.StockQuantity),
		money(p.Price),
		money(p.WholesalePrice),
		yesNo(p.HasVariations),
		strconv.Itoa(len(p.Images)),
		primary,
		p.PSIN,
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
