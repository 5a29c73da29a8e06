package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrInvalidKind = errors.New("invalid product kind, use 'category', 'popular' or 'bestseller'")
)

func Create(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	INSERT INTO products
		(product_id, category_id, name, details, image_url, price, popular, best_seller, created_at, updated_at)
	VALUES
		(:product_id, :category_id, :name, :details, :image_url, :price, :popular, :best_seller, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.QueryerContext, id string) (Product, error) {
	const q = `
	SELECT product_id, category_id, name, details, image_url, price, popular, best_seller, created_at, updated_at
	FROM products
	WHERE product_id = $1`

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}
	return p, nil
}

// List returns the summaries matching kind. categoryID is only read for
// KindCategory.
func List(ctx context.Context, db sqlx.QueryerContext, kind Kind, categoryID string) ([]Summary, error) {
	const base = `SELECT product_id, name, price, image_url FROM products `

	var (
		q    string
		args []any
	)
	switch kind {
	case KindCategory:
		q, args = base+`WHERE category_id = $1 ORDER BY name`, []any{categoryID}
	case KindPopular:
		q = base + `WHERE popular ORDER BY name`
	case KindBestSeller:
		q = base + `WHERE best_seller ORDER BY name`
	default:
		return nil, ErrInvalidKind
	}

	ps := []Summary{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, args...); err != nil {
		return nil, fmt.Errorf("selecting %s products: %w", kind, err)
	}
	return ps, nil
}

func UpdatePrice(ctx context.Context, db sqlx.ExtContext, id string, price decimal.Decimal, now time.Time) error {
	const q = `UPDATE products SET price = $2, updated_at = $3 WHERE product_id = $1`

	res, err := db.ExecContext(ctx, q, id, price, now)
	if err != nil {
		return fmt.Errorf("updating price of product[%s]: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Catalog answers price lookups for the cart from the products table.
type Catalog struct {
	DB sqlx.QueryerContext
}

func (c Catalog) UnitPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	const q = `SELECT price FROM products WHERE product_id = $1`

	var price decimal.Decimal
	if err := sqlx.GetContext(ctx, c.DB, &price, q, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, ErrNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("selecting price of product[%s]: %w", productID, err)
	}
	return price, nil
}
