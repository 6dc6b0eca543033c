package feed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"go-feed-catalog/internal/model"

	"go.uber.org/zap"
)

var ErrUnreadableFeed = errors.New("unreadable feed")

const progressEvery = 1000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Progress is reported while rows are mapped.
type Progress struct {
	Loaded  int     `json:"loaded"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

type ProgressFunc func(Progress)

// Parser turns delimited feed documents into feed records. It holds no
// per-document state and is safe for concurrent use.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseProducts reads a product feed. Rows without a SKU are dropped.
func (p *Parser) ParseProducts(ctx context.Context, r io.Reader, onProgress ProgressFunc) ([]model.ProductFeedItem, error) {
	header, rows, err := p.readRecords(r)
	if err != nil {
		return nil, err
	}
	cols := ProductColumns.resolve(header)

	items := make([]model.ProductFeedItem, 0, len(rows))
	err = walkRows(ctx, rows, onProgress, func(row []string) {
		item := model.ProductFeedItem{Images: []string{}}
		for _, c := range cols {
			v := cell(row, c.index)
			switch c.field {
			case FieldSKU:
				item.SKU = trimCell(v)
			case FieldTitle:
				item.Title = trimCell(v)
			case FieldShortDescription:
				item.ShortDescription = trimCell(v)
			case FieldLongDescription:
				item.LongDescription = trimCell(v)
			case FieldImages:
				item.Images = ParseImages(v)
			case FieldCategory:
				item.Category = trimCell(v)
			case FieldColour:
				item.Colour = trimCell(v)
			case FieldCategoryOne:
				item.CategoryOne = trimCell(v)
			case FieldCategoryTwo:
				item.CategoryTwo = trimCell(v)
			case FieldPSIN:
				item.PSIN = trimCell(v)
			}
		}
		if item.SKU != "" {
			items = append(items, item)
		}
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ParseStock reads a stock feed. The status of a row comes from the status
// column when present, then from a textual quantity, then from the
// quantity itself.
func (p *Parser) ParseStock(ctx context.Context, r io.Reader, onProgress ProgressFunc) ([]model.StockFeedItem, error) {
	header, rows, err := p.readRecords(r)
	if err != nil {
		return nil, err
	}
	cols := StockColumns.resolve(header)

	items := make([]model.StockFeedItem, 0, len(rows))
	err = walkRows(ctx, rows, onProgress, func(row []string) {
		var (
			item        model.StockFeedItem
			explicit    string
			tokenStatus model.StockStatus
		)
		for _, c := range cols {
			v := cell(row, c.index)
			switch c.field {
			case FieldSKU:
				item.SKU = trimCell(v)
			case FieldStockQuantity:
				qty, status, ok := ParseStockValue(v)
				item.StockQuantity = qty
				tokenStatus = ""
				if ok {
					tokenStatus = status
				}
			case FieldStockStatus:
				explicit = trimCell(v)
			case FieldPrice:
				item.Price = ParsePrice(v)
			case FieldWholesalePrice:
				item.WholesalePrice = ParsePrice(v)
			}
		}
		if item.SKU == "" {
			return
		}
		switch {
		case explicit != "":
			item.StockStatus = ExplicitStatus(explicit)
		case tokenStatus != "":
			item.StockStatus = tokenStatus
		default:
			item.StockStatus = DeriveStatus(item.StockQuantity)
		}
		items = append(items, item)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// readRecords splits the whole document before any row is mapped, so a
// document that cannot be read never yields a partial record set.
func (p *Parser) readRecords(r io.Reader) ([]string, [][]string, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	if bom, _ := br.Peek(len(utf8BOM)); bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	sample, err := br.Peek(delimiterSampleSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableFeed, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = DetectDelimiter(sample)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var (
		header  []string
		rows    [][]string
		skipped int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				p.logger.Warn("skipping malformed feed row", zap.Int("line", pe.Line), zap.Error(pe.Err))
				continue
			}
			return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableFeed, err)
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}
	if skipped > 0 {
		p.logger.Info("feed read with skipped rows", zap.Int("rows", len(rows)), zap.Int("skipped", skipped))
	}
	return header, rows, nil
}

func walkRows(ctx context.Context, rows [][]string, onProgress ProgressFunc, fn func([]string)) error {
	report := func(pr Progress) {
		if onProgress != nil {
			onProgress(pr)
		}
	}
	total := len(rows)
	report(Progress{Loaded: 0, Total: total, Percent: 0})

	for i, row := range rows {
		fn(row)
		if n := i + 1; n%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrUnreadableFeed, err)
			}
			report(Progress{Loaded: n, Total: total, Percent: float64(n) / float64(total) * 100})
		}
	}

	report(Progress{Loaded: total, Total: total, Percent: 100})
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
