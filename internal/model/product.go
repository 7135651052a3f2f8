package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers (9.99), not strings ("9.99").
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a persisted catalog entry.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Color         string          `json:"color"`
	Sku           string          `json:"sku"`
	StockQuantity int32           `json:"stockQuantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	// UpdatedAt is nil until the first update.
	UpdatedAt *time.Time `json:"updatedAt"`
}

// ProductReadModel is the external representation of a product.
type ProductReadModel struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Color         string          `json:"color"`
	Sku           string          `json:"sku"`
	StockQuantity int32           `json:"stockQuantity"`
}

// NewProductReadModel maps a product to its read model.
func NewProductReadModel(p Product) ProductReadModel {
	return ProductReadModel{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Color:         p.Color,
		Sku:           p.Sku,
		StockQuantity: p.StockQuantity,
	}
}
