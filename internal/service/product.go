package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/event"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
)

type CreateProductParams struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Color         string
	Sku           string
	StockQuantity int32
}

// UpdateProductParams replaces every mutable field; zero values are written as-is.
type UpdateProductParams struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Color         string
	Sku           string
	StockQuantity int32
}

type ProductService interface {
	ListAllProducts(ctx context.Context) ([]model.ProductReadModel, error)
	ListProductsByColor(ctx context.Context, color string) ([]model.ProductReadModel, error)
	GetProduct(ctx context.Context, id int64) (product model.ProductReadModel, found bool, err error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.ProductReadModel, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) error
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	logger        *slog.Logger
	productRepo   repository.ProductRepository
	notifier      event.Notifier
	notifications *prometheus.CounterVec
	now           func() time.Time
}

type Option func(*productService)

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *productService) {
		s.now = now
	}
}

// WithNotificationCounter records every notification outcome on c,
// labelled by event type and result.
func WithNotificationCounter(c *prometheus.CounterVec) Option {
	return func(s *productService) {
		s.notifications = c
	}
}

func NewProductService(
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	notifier event.Notifier,
	opts ...Option,
) ProductService {
	s := &productService{
		logger:      logger.With(slog.String("service", "product")),
		productRepo: productRepo,
		notifier:    notifier,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.ProductReadModel, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return toReadModels(products), nil
}

func (s *productService) ListProductsByColor(ctx context.Context, color string) ([]model.ProductReadModel, error) {
	products, err := s.productRepo.ListProductsByColor(ctx, color)
	if err != nil {
		return nil, fmt.Errorf("product repository list products by color: %w", err)
	}

	return toReadModels(products), nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (model.ProductReadModel, bool, error) {
	product, found, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.ProductReadModel{}, false, fmt.Errorf("product repository get product: %w", err)
	}
	if !found {
		return model.ProductReadModel{}, false, nil
	}

	return model.NewProductReadModel(product), true, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.ProductReadModel, error) {
	product := model.Product{
		Name:          params.Name,
		Description:   params.Description,
		Price:         params.Price,
		Color:         params.Color,
		Sku:           params.Sku,
		StockQuantity: params.StockQuantity,
		CreatedAt:     s.now(),
	}

	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return model.ProductReadModel{}, apperr.DuplicateSkuErr.WrapParent(err)
		}
		return model.ProductReadModel{}, fmt.Errorf("product repository create product: %w", err)
	}

	s.observe(ctx, created, s.notifier.NotifyProductCreated(ctx, created))

	return model.NewProductReadModel(created), nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) error {
	existing, found, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("product repository get product: %w", err)
	}
	if !found {
		return apperr.ProductNotFoundErr
	}

	replacement := model.Product{
		ID:            existing.ID,
		Name:          params.Name,
		Description:   params.Description,
		Price:         params.Price,
		Color:         params.Color,
		Sku:           params.Sku,
		StockQuantity: params.StockQuantity,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     existing.UpdatedAt,
	}

	updated, err := s.productRepo.UpdateProduct(ctx, replacement)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return apperr.DuplicateSkuErr.WrapParent(err)
		}
		return fmt.Errorf("product repository update product: %w", err)
	}

	s.observe(ctx, updated, s.notifier.NotifyProductUpdated(ctx, updated))

	return nil
}

// DeleteProduct removes the product if present. No event is emitted.
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("product repository delete product: %w", err)
	}

	return nil
}

// observe inspects a notification receipt and discards it. A failed
// notification never changes the outcome of the write that triggered it.
func (s *productService) observe(ctx context.Context, product model.Product, receipt event.Receipt) {
	result := "success"
	if receipt.Failed() {
		result = "failure"
		s.logger.WarnContext(ctx, "failed to publish product event",
			slog.String("event_type", string(receipt.Type)),
			slog.String("topic", receipt.Topic),
			slog.Int64("product_id", product.ID),
			slog.Any("error", receipt.Err),
		)
	}

	if s.notifications != nil {
		s.notifications.WithLabelValues(string(receipt.Type), result).Inc()
	}
}

func toReadModels(products []model.Product) []model.ProductReadModel {
	items := make([]model.ProductReadModel, 0, len(products))
	for _, product := range products {
		items = append(items, model.NewProductReadModel(product))
	}
	return items
}
