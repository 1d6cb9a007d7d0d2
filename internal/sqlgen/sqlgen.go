// Package sqlgen renders crawled product records as a seed SQL script for
// the storefront's products table.
package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storefront-tools/prodcrawl/internal/types"
)

// Columns is the fixed column list of the target table, in insert order.
const Columns = "name_en, name_he, description_en, description_he, price, image_url, category_id, subcategory_id, stock_status, specs"

// Escape wraps s in single quotes with embedded single quotes doubled.
func Escape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeNullable renders a nullable string value.
func escapeNullable(s *string) string {
	if s == nil {
		return "NULL"
	}
	return Escape(*s)
}

// Render produces the seed script: two comment lines followed by one
// multi-row INSERT statement, one row per record in input order.
func Render(products []types.ProductRecord, table string) (string, error) {
	var b strings.Builder
	b.WriteString("-- Generated from crawled-products.json. Run after schema and seed-categories-subcategories.sql.\n")
	b.WriteString("-- Products from crawl; image_url may be external (run the images stage and replace with /product-images/... if needed).\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES\n", table, Columns)

	for i, p := range products {
		row, err := renderRow(p)
		if err != nil {
			return "", fmt.Errorf("product %d (%s): %w", i, p.Slug, err)
		}
		b.WriteString(row)
		if i < len(products)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString(";")
		}
	}

	return b.String(), nil
}

func renderRow(p types.ProductRecord) (string, error) {
	nameHE := p.NameHE
	if nameHE == "" {
		nameHE = p.NameEN
	}

	imageURL := "NULL"
	if p.ImageURL != "" {
		imageURL = Escape(p.ImageURL)
	}

	stockStatus := p.StockStatus
	if stockStatus == "" {
		stockStatus = types.StockInStock
	}

	specs := "NULL"
	if p.Specs != nil {
		encoded, err := json.Marshal(p.Specs)
		if err != nil {
			return "", fmt.Errorf("encode specs: %w", err)
		}
		specs = Escape(string(encoded)) + "::jsonb"
	}

	return fmt.Sprintf("(%s, %s, %s, %s, %v, %s, %s, %s, %s, %s)",
		Escape(p.NameEN),
		Escape(nameHE),
		escapeNullable(p.DescriptionEN),
		escapeNullable(p.DescriptionHE),
		p.Price,
		imageURL,
		Escape(p.CategoryID),
		escapeNullable(p.SubcategoryID),
		Escape(stockStatus),
		specs,
	), nil
}
