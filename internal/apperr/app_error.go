package apperr

import "github.com/tuanvumaihuynh/product-catalog/pkg/zerror"

const (
	ValidationErrorCode    = "VALIDATION_FAILED"
	ProductNotFoundCode    = "PRODUCT_NOT_FOUND"
	DuplicateSkuCode       = "DUPLICATE_SKU"
	UnauthorizedCode       = "UNAUTHORIZED"
	InvalidCredentialsCode = "INVALID_CREDENTIALS"
)

var (
	ValidationErr         = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr    = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	DuplicateSkuErr       = zerror.NewConflict(DuplicateSkuCode, "a product with this sku already exists")
	UnauthorizedErr       = zerror.NewUnauthorized(UnauthorizedCode, "missing or invalid bearer token")
	InvalidCredentialsErr = zerror.NewUnauthorized(InvalidCredentialsCode, "invalid username or password")
)
