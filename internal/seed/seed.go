// Package seed fills an empty catalog with sample products.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
)

// Products are the sample products inserted into an empty catalog.
func Products(now time.Time) []model.Product {
	return []model.Product{
		{
			Name:          "Sample Product 1",
			Description:   "First sample product",
			Price:         decimal.RequireFromString("19.99"),
			Color:         "Red",
			Sku:           "SKU001",
			StockQuantity: 100,
			CreatedAt:     now,
		},
		{
			Name:          "Sample Product 2",
			Description:   "Second sample product",
			Price:         decimal.RequireFromString("29.99"),
			Color:         "Blue",
			Sku:           "SKU002",
			StockQuantity: 50,
			CreatedAt:     now,
		},
		{
			Name:          "Sample Product 3",
			Description:   "Third sample product",
			Price:         decimal.RequireFromString("39.99"),
			Color:         "Red",
			Sku:           "SKU003",
			StockQuantity: 75,
			CreatedAt:     now,
		},
	}
}

// Run inserts the sample products when the catalog is empty and returns how
// many were inserted. A catalog with any product is left untouched.
func Run(ctx context.Context, logger *slog.Logger, repo repository.ProductRepository, now time.Time) (int, error) {
	existing, err := repo.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("product repository list products: %w", err)
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "catalog already has products, skipping seed", slog.Int("count", len(existing)))
		return 0, nil
	}

	products := Products(now)
	for _, p := range products {
		created, err := repo.CreateProduct(ctx, p)
		if err != nil {
			return 0, fmt.Errorf("product repository create product %s: %w", p.Sku, err)
		}
		logger.InfoContext(ctx, "seeded product", slog.Int64("product_id", created.ID), slog.String("sku", created.Sku))
	}

	return len(products), nil
}
