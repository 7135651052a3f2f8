package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
)

// ErrDuplicateKey is returned when a write violates a unique constraint (sku).
var ErrDuplicateKey = errors.New("duplicate key")

// priceScale matches the NUMERIC(18, 2) price column.
const priceScale = 2

const uniqueViolationCode = "23505"

// ProductRepository owns reads and writes of products.
//
// GetProduct reports absence with found == false rather than an error.
// UpdateProduct does not check that the row exists, and DeleteProduct is a
// no-op for unknown ids.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByColor(ctx context.Context, color string) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (product model.Product, found bool, err error)
	CreateProduct(ctx context.Context, product model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	db  db.DB
	now func() time.Time
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db:  db,
		now: time.Now,
	}
}

type productRow struct {
	ID            int64          `db:"id"`
	Name          string         `db:"name"`
	Description   string         `db:"description"`
	Price         pgtype.Numeric `db:"price"`
	Color         string         `db:"color"`
	Sku           string         `db:"sku"`
	StockQuantity int32          `db:"stock_quantity"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     *time.Time     `db:"updated_at"`
}

const productColumns = `id, name, description, price, color, sku, stock_quantity, created_at, updated_at`

func (r productRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

func (r productRepository) ListProductsByColor(ctx context.Context, color string) ([]model.Product, error) {
	products, err := r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE LOWER(color) = LOWER(@color) ORDER BY id`,
		pgx.NamedArgs{"color": color},
	)
	if err != nil {
		return nil, fmt.Errorf("list products by color: %w", err)
	}

	return products, nil
}

func (r productRepository) GetProduct(ctx context.Context, id int64) (model.Product, bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = @id`,
		pgx.NamedArgs{"id": id},
	)
	if err != nil {
		return model.Product{}, false, fmt.Errorf("get product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, false, nil
	}
	if err != nil {
		return model.Product{}, false, fmt.Errorf("get product: %w", err)
	}

	product, err := rowToModelProduct(row)
	if err != nil {
		return model.Product{}, false, fmt.Errorf("convert product row: %w", err)
	}

	return product, true, nil
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, color, sku, stock_quantity, created_at)
		VALUES (@name, @description, @price, @color, @sku, @stock_quantity, @created_at)
		RETURNING id
	`, pgx.NamedArgs{
		"name":           product.Name,
		"description":    product.Description,
		"price":          decimalToNumeric(product.Price),
		"color":          product.Color,
		"sku":            product.Sku,
		"stock_quantity": product.StockQuantity,
		"created_at":     product.CreatedAt,
	}).Scan(&product.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", translateError(err))
	}

	product.Price = product.Price.Round(priceScale)
	product.UpdatedAt = nil

	return product, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	updatedAt := r.now()

	if _, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			name           = @name,
			description    = @description,
			price          = @price,
			color          = @color,
			sku            = @sku,
			stock_quantity = @stock_quantity,
			updated_at     = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":             product.ID,
		"name":           product.Name,
		"description":    product.Description,
		"price":          decimalToNumeric(product.Price),
		"color":          product.Color,
		"sku":            product.Sku,
		"stock_quantity": product.StockQuantity,
		"updated_at":     updatedAt,
	}); err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", translateError(err))
	}

	product.Price = product.Price.Round(priceScale)
	product.UpdatedAt = &updatedAt

	return product, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

func (r productRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := rowToModelProduct(row)
		if err != nil {
			return nil, fmt.Errorf("convert product row: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func rowToModelProduct(row productRow) (model.Product, error) {
	price, err := numericToDecimal(row.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price: %w", err)
	}

	return model.Product{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		Price:         price,
		Color:         row.Color,
		Sku:           row.Sku,
		StockQuantity: row.StockQuantity,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	d = d.Round(priceScale)
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, errors.New("null numeric")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("non-finite numeric")
	}

	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// translateError maps unique violations to ErrDuplicateKey, keeping the driver error in the chain.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}

	return err
}
