package cart

import (
	"errors"
	"time"

	"github.com/irsalhamdi/e-commerce-api/core/product"
	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound    = errors.New("no cart line found for this product")
	ErrInvalidAction   = errors.New("invalid action, use 'increase', 'decrease' or 'delete'")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductNotFound = product.ErrNotFound
)

// Line is one (user, product) entry of a cart. UnitPrice is the catalog price
// when the line was created and Total is always UnitPrice × Quantity.
type Line struct {
	ID        string          `json:"id" db:"cart_item_id"`
	UserID    string          `json:"userId" db:"user_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// View is a cart line joined with the catalog for display.
type View struct {
	ID           string          `json:"cartLineId" db:"cart_item_id"`
	UnitPrice    decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Quantity     int             `json:"quantity" db:"quantity"`
	ProductID    string          `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"name"`
	ProductImage string          `json:"productImage" db:"image_url"`
}

type ItemNew struct {
	UserID    string
	ProductID string
	Quantity  int
}

// ItemAdd is the body of POST /cart. UnitPrice is accepted for clients that
// send it, but new lines are always priced from the catalog.
type ItemAdd struct {
	ProductID string              `json:"productId" validate:"required,uuid4"`
	UserID    string              `json:"userId" validate:"omitempty,uuid4"`
	Quantity  int                 `json:"quantity" validate:"required,gte=1,lte=1000"`
	UnitPrice decimal.NullDecimal `json:"unitPrice" validate:"omitempty,gte=0"`
}

type Action string

const (
	Increase Action = "increase"
	Decrease Action = "decrease"
	Delete   Action = "delete"
)

// Result is the state of a line after an action. Removed lines carry the
// values they had just before removal.
type Result struct {
	Line    Line `json:"line"`
	Removed bool `json:"removed"`
}
