package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("there are no items in the cart to create the order")
	ErrPlacementFailed = errors.New("an error occurred while processing the order")
	ErrNotFound        = errors.New("order not found")
	ErrNoDetails       = errors.New("order details not found")
	ErrNoOrders        = errors.New("no orders found for the specified user")
)

// Order is the header of a placed order. Total is the amount the client
// submitted at placement.
type Order struct {
	ID        string          `json:"id" db:"order_id"`
	UserID    string          `json:"userId" db:"user_id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	OrderDate time.Time       `json:"orderDate" db:"order_date"`
}

// Detail is one frozen line of an order, copied from a cart line.
type Detail struct {
	ID        string          `json:"id" db:"order_detail_id"`
	OrderID   string          `json:"orderId" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Total     decimal.Decimal `json:"total" db:"total"`
}

// OrderNew is the body of POST /orders. UserID defaults to the caller. Total
// must fit orders.total exactly, so it is stored as submitted.
type OrderNew struct {
	UserID string          `json:"userId" validate:"omitempty,uuid4"`
	Total  decimal.Decimal `json:"total" validate:"gte=0,lte=9999999999.99,cents"`
}

type Summary struct {
	ID        string          `json:"orderId" db:"order_id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	OrderDate time.Time       `json:"orderDate" db:"order_date"`
}

type DetailView struct {
	ID           string          `json:"detailId" db:"order_detail_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	SubTotal     decimal.Decimal `json:"subtotal" db:"total"`
	ProductName  string          `json:"productName" db:"name"`
	ProductImage string          `json:"productImage" db:"image_url"`
	UnitPrice    decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// placementError marks any failure inside the placement transaction. It
// matches ErrPlacementFailed and unwraps to the store error.
type placementError struct {
	err error
}

func (e *placementError) Error() string {
	return ErrPlacementFailed.Error() + ": " + e.err.Error()
}

func (e *placementError) Is(target error) bool { return target == ErrPlacementFailed }

func (e *placementError) Unwrap() error { return e.err }
