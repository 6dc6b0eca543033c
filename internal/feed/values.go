package feed

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go-feed-catalog/internal/model"
)

const (
	delimiterSampleSize = 1000
	lowStockThreshold   = 10
)

var (
	imageSeparator = regexp.MustCompile(`[,|;\n]+`)
	priceNoise     = regexp.MustCompile(`[£$€,\s]`)
	leadingFloat   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	nonInteger     = regexp.MustCompile(`[^\d-]`)
	leadingInt     = regexp.MustCompile(`^-?\d+`)
)

// DetectDelimiter picks tab when the sample holds more tabs than commas.
// Only the first 1000 bytes are inspected.
func DetectDelimiter(sample []byte) rune {
	if len(sample) > delimiterSampleSize {
		sample = sample[:delimiterSampleSize]
	}
	tabs, commas := 0, 0
	for _, b := range sample {
		switch b {
		case '\t':
			tabs++
		case ',':
			commas++
		}
	}
	if tabs > commas {
		return '\t'
	}
	return ','
}

func trimCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// ParseImages splits a multi-URL cell and keeps the entries that look like
// absolute URLs. Duplicates are dropped, first occurrence wins.
func ParseImages(cell string) []string {
	images := []string{}
	if cell == "" {
		return images
	}
	seen := make(map[string]struct{})
	for _, part := range imageSeparator.Split(cell, -1) {
		part = trimCell(part)
		if part == "" || !isImageURL(part) {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		images = append(images, part)
	}
	return images
}

func isImageURL(s string) bool {
	if strings.HasPrefix(s, "http") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// ParsePrice strips currency symbols, thousands separators and whitespace
// and reads the leading decimal number. Anything unreadable is 0.
func ParsePrice(cell string) float64 {
	cleaned := priceNoise.ReplaceAllString(cell, "")
	m := leadingFloat.FindString(cleaned)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseStockValue reads a quantity cell, which may hold a number or one of
// the textual statuses. A textual status reports quantity 0 and ok=true.
func ParseStockValue(cell string) (qty int, status model.StockStatus, ok bool) {
	trimmed := trimCell(cell)
	if trimmed == "" {
		return 0, "", false
	}
	switch strings.ToLower(trimmed) {
	case "in stock":
		return 0, model.InStock, true
	case "out of stock", "out-of-stock":
		return 0, model.OutOfStock, true
	case "low stock", "low-stock":
		return 0, model.LowStock, true
	}

	digits := leadingInt.FindString(nonInteger.ReplaceAllString(trimmed, ""))
	if digits == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, "", false
	}
	return n, "", false
}

// DeriveStatus maps a quantity onto a status band.
func DeriveStatus(qty int) model.StockStatus {
	switch {
	case qty <= 0:
		return model.OutOfStock
	case qty <= lowStockThreshold:
		return model.LowStock
	default:
		return model.InStock
	}
}

// ExplicitStatus interprets a value from a dedicated status column.
func ExplicitStatus(cell string) model.StockStatus {
	v := strings.ToLower(trimCell(cell))
	switch {
	case strings.Contains(v, "out") || v == "0" || v == "no":
		return model.OutOfStock
	case strings.Contains(v, "low"):
		return model.LowStock
	default:
		return model.InStock
	}
}
