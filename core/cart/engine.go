package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Catalog prices products that are not in the cart yet. UnitPrice returns
// an error matching ErrProductNotFound for unknown products.
type Catalog interface {
	UnitPrice(ctx context.Context, productID string) (decimal.Decimal, error)
}

// ParseAction matches the action names case-insensitively.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Increase, Decrease, Delete:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// AddOrIncrement adds it.Quantity to the user's line for the product. A new
// line is priced from the catalog; an existing one keeps its unit price.
func AddOrIncrement(ctx context.Context, db sqlx.ExtContext, cat Catalog, it ItemNew) (Line, error) {
	if it.Quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}

	now := time.Now().UTC()

	l, err := Increment(ctx, db, it.UserID, it.ProductID, it.Quantity, now)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, ErrLineNotFound) {
		return Line{}, err
	}

	price, err := cat.UnitPrice(ctx, it.ProductID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return Line{}, fmt.Errorf("pricing product[%s]: %w", it.ProductID, err)
		}
		return Line{}, fmt.Errorf("looking up catalog price: %w", err)
	}

	// A concurrent first add of the same product turns this insert into an
	// increment of the line the other request created.
	l = Line{
		ID:        validate.GenerateID(),
		UserID:    it.UserID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		UnitPrice: price,
		Total:     price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return Upsert(ctx, db, l)
}

// ApplyAction moves a line through its states:
//
//	increase: quantity+1
//	decrease: quantity-1, or removal at quantity 1
//	delete:   removal
//
// Every action on an absent line fails with ErrLineNotFound.
func ApplyAction(ctx context.Context, db sqlx.ExtContext, userID, productID string, action Action) (Result, error) {
	now := time.Now().UTC()

	switch action {
	case Increase:
		l, err := Increment(ctx, db, userID, productID, 1, now)
		if err != nil {
			return Result{}, err
		}
		return Result{Line: l}, nil

	case Decrease:
		return Decrement(ctx, db, userID, productID, now)

	case Delete:
		l, err := DeleteLine(ctx, db, userID, productID)
		if err != nil {
			return Result{}, err
		}
		return Result{Line: l, Removed: true}, nil
	}

	return Result{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
}
