package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

const maxBodyBytes = 1 << 20

// productRequest is the body of both create and update.
type productRequest struct {
	Name          string          `json:"name" validate:"notblank,max=100"`
	Description   string          `json:"description" validate:"max=500"`
	Price         decimal.Decimal `json:"price" validate:"money"`
	Color         string          `json:"color" validate:"max=50"`
	Sku           string          `json:"sku" validate:"notblank,max=20"`
	StockQuantity int32           `json:"stockQuantity" validate:"gte=0"`
}

type productHandler struct {
	productSvc service.ProductService
	validate   validator.Validator
}

func newProductHandler(productSvc service.ProductService, validate validator.Validator) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		validate:   validate,
	}
}

func (h *productHandler) ListProducts(r *http.Request) (response, error) {
	products, err := h.productSvc.ListAllProducts(r.Context())
	if err != nil {
		return response{}, fmt.Errorf("product service list all products: %w", err)
	}

	return ok(products), nil
}

func (h *productHandler) ListProductsByColor(r *http.Request) (response, error) {
	var color string
	if err := runtime.BindQueryParameter("form", true, true, "color", r.URL.Query(), &color); err != nil {
		return response{}, apierr.NewRequestError("invalid query parameter color: %w", err)
	}

	products, err := h.productSvc.ListProductsByColor(r.Context(), color)
	if err != nil {
		return response{}, fmt.Errorf("product service list products by color: %w", err)
	}

	return ok(products), nil
}

func (h *productHandler) GetProductByID(r *http.Request) (response, error) {
	id, err := bindProductID(r)
	if err != nil {
		return response{}, err
	}

	product, found, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return response{}, fmt.Errorf("product service get product: %w", err)
	}
	if !found {
		return response{}, apperr.ProductNotFoundErr
	}

	return ok(product), nil
}

func (h *productHandler) CreateProduct(r *http.Request) (response, error) {
	req, err := h.decodeProductRequest(r)
	if err != nil {
		return response{}, err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Color:         req.Color,
		Sku:           req.Sku,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return response{}, fmt.Errorf("product service create product: %w", err)
	}

	return created(productLocation(product.ID), product), nil
}

func (h *productHandler) UpdateProduct(r *http.Request) (response, error) {
	id, err := bindProductID(r)
	if err != nil {
		return response{}, err
	}

	req, err := h.decodeProductRequest(r)
	if err != nil {
		return response{}, err
	}

	err = h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Color:         req.Color,
		Sku:           req.Sku,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return response{}, fmt.Errorf("product service update product: %w", err)
	}

	return noContent(), nil
}

func (h *productHandler) DeleteProductByID(r *http.Request) (response, error) {
	id, err := bindProductID(r)
	if err != nil {
		return response{}, err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return response{}, fmt.Errorf("product service delete product: %w", err)
	}

	return noContent(), nil
}

func (h *productHandler) decodeProductRequest(r *http.Request) (productRequest, error) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		return productRequest{}, err
	}

	if err := h.validate.Validate(req); err != nil {
		return productRequest{}, apperr.ValidationErr.WrapParent(err)
	}

	return req, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apierr.NewRequestError("invalid request body: %w", err)
	}
	return nil
}

func bindProductID(r *http.Request) (int64, error) {
	var id int64
	if err := runtime.BindQueryParameter("form", true, true, "id", r.URL.Query(), &id); err != nil {
		return 0, apierr.NewRequestError("invalid query parameter id: %w", err)
	}
	return id, nil
}

func productLocation(id int64) string {
	return fmt.Sprintf("/api/products/getProductById?id=%d", id)
}
