package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const lineColumns = `cart_item_id, user_id, product_id, quantity, unit_price, total, created_at, updated_at`

func FetchLine(ctx context.Context, db sqlx.QueryerContext, userID, productID string) (Line, error) {
	const q = `SELECT ` + lineColumns + ` FROM cart_items WHERE user_id = $1 AND product_id = $2`

	var l Line
	if err := sqlx.GetContext(ctx, db, &l, q, userID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Line{}, ErrLineNotFound
		}
		return Line{}, fmt.Errorf("selecting cart line[%s/%s]: %w", userID, productID, err)
	}
	return l, nil
}

// FetchLines returns the user's lines in insertion order.
func FetchLines(ctx context.Context, db sqlx.QueryerContext, userID string) ([]Line, error) {
	const q = `SELECT ` + lineColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at, cart_item_id`

	ls := []Line{}
	if err := sqlx.SelectContext(ctx, db, &ls, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart lines of user[%s]: %w", userID, err)
	}
	return ls, nil
}

func QueryViews(ctx context.Context, db sqlx.QueryerContext, userID string) ([]View, error) {
	const q = `
	SELECT ci.cart_item_id, ci.unit_price, ci.total, ci.quantity, p.product_id, p.name, p.image_url
	FROM cart_items ci
	JOIN products p ON p.product_id = ci.product_id
	WHERE ci.user_id = $1
	ORDER BY ci.created_at, ci.cart_item_id`

	vs := []View{}
	if err := sqlx.SelectContext(ctx, db, &vs, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart of user[%s]: %w", userID, err)
	}
	return vs, nil
}

// Upsert inserts l, or adds l.Quantity to the existing line of the same
// user and product. The stored unit price is never replaced.
func Upsert(ctx context.Context, db sqlx.ExtContext, l Line) (Line, error) {
	const q = `
	INSERT INTO cart_items (` + lineColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (user_id, product_id) DO UPDATE SET
		quantity   = cart_items.quantity + EXCLUDED.quantity,
		total      = cart_items.unit_price * (cart_items.quantity + EXCLUDED.quantity),
		updated_at = EXCLUDED.updated_at
	RETURNING ` + lineColumns

	var out Line
	err := sqlx.GetContext(ctx, db, &out, q,
		l.ID, l.UserID, l.ProductID, l.Quantity, l.UnitPrice, l.Total, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return Line{}, fmt.Errorf("upserting cart line[%s/%s]: %w", l.UserID, l.ProductID, err)
	}
	return out, nil
}

// Increment adds delta to an existing line and recomputes its total.
func Increment(ctx context.Context, db sqlx.ExtContext, userID, productID string, delta int, now time.Time) (Line, error) {
	const q = `
	UPDATE cart_items SET
		quantity   = quantity + $3,
		total      = unit_price * (quantity + $3),
		updated_at = $4
	WHERE user_id = $1 AND product_id = $2
	RETURNING ` + lineColumns

	var l Line
	if err := sqlx.GetContext(ctx, db, &l, q, userID, productID, delta, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Line{}, ErrLineNotFound
		}
		return Line{}, fmt.Errorf("incrementing cart line[%s/%s]: %w", userID, productID, err)
	}
	return l, nil
}

// Decrement lowers the quantity by one, or removes the line when it is at
// one. Both branches run in one statement so the line is never stored at 0.
func Decrement(ctx context.Context, db sqlx.ExtContext, userID, productID string, now time.Time) (Result, error) {
	const q = `
	WITH dec AS (
		UPDATE cart_items SET
			quantity   = quantity - 1,
			total      = unit_price * (quantity - 1),
			updated_at = $3
		WHERE user_id = $1 AND product_id = $2 AND quantity > 1
		RETURNING ` + lineColumns + `, false AS removed
	), del AS (
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND quantity <= 1
		RETURNING ` + lineColumns + `, true AS removed
	)
	SELECT * FROM dec
	UNION ALL
	SELECT * FROM del`

	var row struct {
		Line
		Removed bool `db:"removed"`
	}
	if err := sqlx.GetContext(ctx, db, &row, q, userID, productID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrLineNotFound
		}
		return Result{}, fmt.Errorf("decrementing cart line[%s/%s]: %w", userID, productID, err)
	}
	return Result{Line: row.Line, Removed: row.Removed}, nil
}

func DeleteLine(ctx context.Context, db sqlx.ExtContext, userID, productID string) (Line, error) {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 RETURNING ` + lineColumns

	var l Line
	if err := sqlx.GetContext(ctx, db, &l, q, userID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Line{}, ErrLineNotFound
		}
		return Line{}, fmt.Errorf("deleting cart line[%s/%s]: %w", userID, productID, err)
	}
	return l, nil
}

// DeleteLines removes the given lines of a user and nothing else. Lines the
// user added after ids were read stay in the cart.
func DeleteLines(ctx context.Context, db sqlx.ExtContext, userID string, ids []string) (int64, error) {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND cart_item_id = ANY($2::uuid[])`

	res, err := db.ExecContext(ctx, q, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("deleting %d cart lines of user[%s]: %w", len(ids), userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted cart lines: %w", err)
	}
	return n, nil
}

// Clear empties the cart of a user.
func Clear(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("deleting cart of user[%s]: %w", userID, err)
	}
	return nil
}
