package apicontract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/product-catalog/api-contract"
)

func TestLoad(t *testing.T) {
	doc, err := apicontract.Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/api/products",
		"/api/products/getProductByColor",
		"/api/products/getProductById",
		"/api/products/createProduct",
		"/api/products/updateProduct",
		"/api/products/deleteProductbyId",
		"/login",
		"/health",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	assert.Contains(t, doc.Components.SecuritySchemes, "bearerAuth")
}
