package order

import (
	"context"
	"fmt"
	"time"

	"github.com/irsalhamdi/e-commerce-api/core/cart"
	"github.com/irsalhamdi/e-commerce-api/database"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Place turns the user's cart into an order. The header, one detail per cart
// line and the removal of exactly those lines commit together or not at all.
//
// The cart is read before the transaction opens, at the store's default
// isolation, and no lock is taken: concurrent placements for the same user
// may each consume an overlapping snapshot.
//
// total is stored as submitted. Errors are ErrEmptyCart or an error matching
// ErrPlacementFailed.
func Place(ctx context.Context, db *sqlx.DB, userID string, total decimal.Decimal) (Order, error) {
	lines, err := cart.FetchLines(ctx, db, userID)
	if err != nil {
		return Order{}, &placementError{err: fmt.Errorf("reading cart: %w", err)}
	}

	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	ord := Order{
		ID:        validate.GenerateID(),
		UserID:    userID,
		Total:     total,
		OrderDate: time.Now().UTC(),
	}

	err = database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		if err := Create(ctx, tx, ord); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			d := Detail{
				ID:        validate.GenerateID(),
				OrderID:   ord.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Total:     l.Total,
			}

			if err := CreateDetail(ctx, tx, d); err != nil {
				return fmt.Errorf("creating detail for product[%s]: %w", l.ProductID, err)
			}
			ids = append(ids, l.ID)
		}

		if _, err := cart.DeleteLines(ctx, tx, userID, ids); err != nil {
			return fmt.Errorf("draining cart: %w", err)
		}

		return nil
	})

	if err != nil {
		return Order{}, &placementError{
			err: fmt.Errorf("placing order[%s] for user[%s]: %w", ord.ID, userID, err),
		}
	}
	return ord, nil
}
