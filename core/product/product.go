package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         string          `json:"id" db:"product_id"`
	CategoryID *string         `json:"categoryId,omitempty" db:"category_id"`
	Name       string          `json:"name" db:"name"`
	Details    string          `json:"details" db:"details"`
	ImageURL   string          `json:"imageUrl" db:"image_url"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Popular    bool            `json:"popular" db:"popular"`
	BestSeller bool            `json:"bestSeller" db:"best_seller"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// Summary is the list projection of a product.
type Summary struct {
	ID       string          `json:"id" db:"product_id"`
	Name     string          `json:"name" db:"name"`
	Price    decimal.Decimal `json:"price" db:"price"`
	ImageURL string          `json:"imageUrl" db:"image_url"`
}

type ProductNew struct {
	CategoryID *string         `json:"categoryId" validate:"omitempty,uuid4"`
	Name       string          `json:"name" validate:"required"`
	Details    string          `json:"details"`
	ImageURL   string          `json:"imageUrl" validate:"required"`
	Price      decimal.Decimal `json:"price" validate:"gte=0,lte=1000000,cents"`
	Popular    bool            `json:"popular"`
	BestSeller bool            `json:"bestSeller"`
}

type PriceUp struct {
	Price decimal.Decimal `json:"price" validate:"gte=0,lte=1000000,cents"`
}

// Kind selects which products a listing returns.
type Kind string

const (
	KindCategory   Kind = "category"
	KindPopular    Kind = "popular"
	KindBestSeller Kind = "bestseller"
)
