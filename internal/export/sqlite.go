package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"go-feed-catalog/internal/model"

	_ "modernc.org/sqlite"
)

const snapshotTable = "products"

var snapshotColumns = []struct {
	name, typ string
}{
	{"sku", "TEXT PRIMARY KEY"},
	{"title", "TEXT"},
	{"short_description", "TEXT"},
	{"long_description", "TEXT"},
	{"category", "TEXT"},
	{"category_one", "TEXT"},
	{"category_two", "TEXT"},
	{"colour", "TEXT"},
	{"psin", "TEXT"},
	{"stock_quantity", "INTEGER"},
	{"stock_status", "TEXT"},
	{"price", "REAL"},
	{"wholesale_price", "REAL"},
	{"has_variations", "INTEGER"},
	{"variation_group", "TEXT"},
	{"image_count", "INTEGER"},
	{"images", "TEXT"},
}

// WriteSQLite replaces the file at path with a single-table SQLite
// snapshot of the products.
func WriteSQLite(ctx context.Context, path string, products []model.Product) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite snapshot: %w", err)
	}
	defer db.Close()

	defs := make([]string, 0, len(snapshotColumns))
	names := make([]string, 0, len(snapshotColumns))
	for _, c := range snapshotColumns {
		defs = append(defs, fmt.Sprintf("%q %s", c.name, c.typ))
		names = append(names, fmt.Sprintf("%q", c.name))
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE "`+snapshotTable+`" (`+strings.Join(defs, ",")+`)`); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ph := strings.TrimRight(strings.Repeat("?,", len(snapshotColumns)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO "`+snapshotTable+`" (`+strings.Join(names, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range products {
		p := &products[i]
		hasVariations := 0
		if p.HasVariations {
			hasVariations = 1
		}
		if _, err := stmt.ExecContext(ctx,
			p.SKU, p.Title, p.ShortDescription, p.LongDescription,
			p.Category, p.CategoryOne, p.CategoryTwo, p.Colour, p.PSIN,
			p.StockQuantity, string(p.StockStatus), p.Price, p.WholesalePrice,
			hasVariations, p.VariationGroup, len(p.Images), strings.Join(p.Images, "\n"),
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", p.SKU, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_stock_status ON products(stock_status)`,
		`CREATE INDEX IF NOT EXISTS idx_products_variation_group ON products(variation_group)`,
	} {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
