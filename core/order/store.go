package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, o Order) error {
	const q = `
	INSERT INTO orders (order_id, user_id, total, order_date)
	VALUES (:order_id, :user_id, :total, :order_date)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, o); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func CreateDetail(ctx context.Context, db sqlx.ExtContext, d Detail) error {
	const q = `
	INSERT INTO order_details (order_detail_id, order_id, product_id, quantity, unit_price, total)
	VALUES (:order_detail_id, :order_id, :product_id, :quantity, :unit_price, :total)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, d); err != nil {
		return fmt.Errorf("inserting order detail: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.QueryerContext, id string) (Order, error) {
	const q = `SELECT order_id, user_id, total, order_date FROM orders WHERE order_id = $1`

	var o Order
	if err := sqlx.GetContext(ctx, db, &o, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("selecting order[%s]: %w", id, err)
	}
	return o, nil
}

func FetchDetails(ctx context.Context, db sqlx.QueryerContext, orderID string) ([]Detail, error) {
	const q = `
	SELECT order_detail_id, order_id, product_id, quantity, unit_price, total
	FROM order_details
	WHERE order_id = $1
	ORDER BY order_detail_id`

	ds := []Detail{}
	if err := sqlx.SelectContext(ctx, db, &ds, q, orderID); err != nil {
		return nil, fmt.Errorf("selecting details of order[%s]: %w", orderID, err)
	}
	return ds, nil
}

// QueryByUser lists the user's orders, newest first.
func QueryByUser(ctx context.Context, db sqlx.QueryerContext, userID string) ([]Summary, error) {
	const q = `
	SELECT order_id, total, order_date
	FROM orders
	WHERE user_id = $1
	ORDER BY order_date DESC, order_id`

	sums := []Summary{}
	if err := sqlx.SelectContext(ctx, db, &sums, q, userID); err != nil {
		return nil, fmt.Errorf("selecting orders of user[%s]: %w", userID, err)
	}
	return sums, nil
}

// QueryDetails joins the order's details with the catalog for display. The
// unit price is the one frozen at placement.
func QueryDetails(ctx context.Context, db sqlx.QueryerContext, orderID string) ([]DetailView, error) {
	const q = `
	SELECT od.order_detail_id, od.quantity, od.total, p.name, p.image_url, od.unit_price
	FROM order_details od
	JOIN products p ON p.product_id = od.product_id
	WHERE od.order_id = $1
	ORDER BY p.name, od.order_detail_id`

	ds := []DetailView{}
	if err := sqlx.SelectContext(ctx, db, &ds, q, orderID); err != nil {
		return nil, fmt.Errorf("selecting detail views of order[%s]: %w", orderID, err)
	}
	return ds, nil
}
