// Package memory provides an in-process ProductRepository with the same
// uniqueness and lookup semantics as the Postgres implementation.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository is an in-memory implementation of repository.ProductRepository.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]model.Product
	nextID   int64
	now      func() time.Time
}

// NewProductRepository creates a new in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]model.Product),
		nextID:   1,
		now:      time.Now,
	}
}

// WithClock overrides the clock used to stamp updates.
func (r *ProductRepository) WithClock(now func() time.Time) *ProductRepository {
	r.now = now
	return r
}

func (r *ProductRepository) ListProducts(_ context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(model.Product) bool { return true }), nil
}

func (r *ProductRepository) ListProductsByColor(_ context.Context, color string) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p model.Product) bool {
		return strings.EqualFold(p.Color, color)
	}), nil
}

func (r *ProductRepository) GetProduct(_ context.Context, id int64) (model.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return model.Product{}, false, nil
	}

	return clone(product), true, nil
}

func (r *ProductRepository) CreateProduct(_ context.Context, product model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTaken(product.Sku, 0) {
		return model.Product{}, fmt.Errorf("create product: %w: sku %q", repository.ErrDuplicateKey, product.Sku)
	}

	product.ID = r.nextID
	product.Price = product.Price.Round(2)
	product.UpdatedAt = nil
	r.nextID++

	r.products[product.ID] = product

	return clone(product), nil
}

func (r *ProductRepository) UpdateProduct(_ context.Context, product model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTaken(product.Sku, product.ID) {
		return model.Product{}, fmt.Errorf("update product: %w: sku %q", repository.ErrDuplicateKey, product.Sku)
	}

	updatedAt := r.now()
	product.Price = product.Price.Round(2)
	product.UpdatedAt = &updatedAt

	// Like an UPDATE matching no rows, unknown ids are left alone.
	existing, ok := r.products[product.ID]
	if ok {
		product.CreatedAt = existing.CreatedAt
		r.products[product.ID] = product
	}

	return clone(product), nil
}

func (r *ProductRepository) DeleteProduct(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

func (r *ProductRepository) skuTaken(sku string, exceptID int64) bool {
	for id, p := range r.products {
		if id != exceptID && p.Sku == sku {
			return true
		}
	}
	return false
}

func (r *ProductRepository) collect(match func(model.Product) bool) []model.Product {
	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if match(p) {
			products = append(products, clone(p))
		}
	}

	slices.SortFunc(products, func(a, b model.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return products
}

func clone(p model.Product) model.Product {
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
