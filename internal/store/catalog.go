package store

import (
	"fmt"
	"strings"
	"time"
)

// InsertCatalogItem adds a product to the seller catalog. Product is required
// and Price must not be negative. Catalog items are never edited in place.
func (db *DB) InsertCatalogItem(item *CatalogItem) error {
	item.Product = strings.TrimSpace(item.Product)
	if item.Product == "" {
		return fmt.Errorf("catalog product: %w", ErrInvalid)
	}
	if item.Price < 0 {
		return fmt.Errorf("catalog price %d: %w", item.Price, ErrInvalid)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	res, err := db.Exec(`
		INSERT INTO catalog_items (product, make, type, year, price, other_details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Product, item.Make, item.Type, item.Year, item.Price, item.OtherDetails, item.CreatedAt.UnixMilli())
	if err != nil {
		return err
	}
	item.ID, err = res.LastInsertId()
	return err
}

// DeleteCatalogItem removes a product from the catalog.
func (db *DB) DeleteCatalogItem(id int64) error {
	res, err := db.Exec(`DELETE FROM catalog_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("catalog item %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListCatalogItems returns the full catalog in the order items were added.
func (db *DB) ListCatalogItems() ([]CatalogItem, error) {
	rows, err := db.Query(`
		SELECT id, product, make, type, year, price, other_details, created_at
		FROM catalog_items ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []CatalogItem
	for rows.Next() {
		var it CatalogItem
		var created int64
		if err := rows.Scan(&it.ID, &it.Product, &it.Make, &it.Type, &it.Year, &it.Price, &it.OtherDetails, &created); err != nil {
			return nil, err
		}
		it.CreatedAt = fromMillis(created)
		items = append(items, it)
	}
	return items, rows.Err()
}
