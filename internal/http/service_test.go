package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/product-catalog/internal/auth"
	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/event"
	"github.com/tuanvumaihuynh/product-catalog/internal/health"
	apihttp "github.com/tuanvumaihuynh/product-catalog/internal/http"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalog/internal/metric"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository/memory"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

type stubChecker struct{ err error }

func (stubChecker) Name() string                   { return "postgres" }
func (stubChecker) Critical() bool                 { return true }
func (c stubChecker) Check(context.Context) error  { return c.err }

type testServer struct {
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T, checkers ...health.Checker) testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()
	metrics := metric.New(reg)

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	creds, err := auth.NewStaticCredentials(map[string]string{"admin": string(hash)})
	require.NoError(t, err)

	jwt := auth.NewJWT(config.Auth{
		JWTSecret:   "test-secret",
		JWTIssuer:   "product-catalog",
		JWTAudience: "product-catalog-api",
		TokenTTL:    time.Hour,
	})

	productSvc := service.NewProductService(
		logger,
		memory.NewProductRepository(),
		event.NewLogNotifier(logger),
		service.WithNotificationCounter(metrics.Notifications),
	)

	svc := apihttp.New(config.HTTP{Swagger: true}, logger, apihttp.Deps{
		ProductSvc:  productSvc,
		HealthSvc:   health.NewService(logger, checkers...),
		Credentials: creds,
		Issuer:      jwt,
		Tokens:      jwt,
		Validator:   v,
		Metrics:     metrics,
		Gatherer:    reg,
	})

	r, err := svc.Router(context.Background())
	require.NoError(t, err)

	token, err := jwt.Issue("admin")
	require.NoError(t, err)

	return testServer{handler: r, token: token.Value}
}

func (s testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithToken(t, method, target, body, s.token)
}

func (s testServer) doWithToken(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v))
	return v
}

func TestProductLifecycleScenario(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/products/createProduct", map[string]any{
		"name":          "Widget",
		"sku":           "W-1",
		"color":         "Red",
		"price":         9.99,
		"stockQuantity": 5,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[model.ProductReadModel](t, resp)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "/api/products/getProductById?id=1", resp.Header().Get("Location"))
	assert.Contains(t, resp.Body.String(), `"price":9.99`)

	resp = s.do(t, http.MethodGet, "/api/products/getProductByColor?color=red", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	byColor := decode[[]model.ProductReadModel](t, resp)
	require.Len(t, byColor, 1)
	assert.Equal(t, created, byColor[0])

	resp = s.do(t, http.MethodPut, "/api/products/updateProduct?id=1", map[string]any{
		"name":          "Widget v2",
		"sku":           "W-1",
		"color":         "Blue",
		"price":         12.50,
		"stockQuantity": 3,
	})
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())
	assert.Empty(t, resp.Body.String())

	resp = s.do(t, http.MethodGet, "/api/products/getProductById?id=1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	updated := decode[model.ProductReadModel](t, resp)
	assert.Equal(t, "Blue", updated.Color)
	assert.True(t, decimal.RequireFromString("12.50").Equal(updated.Price))

	resp = s.do(t, http.MethodDelete, "/api/products/deleteProductbyId?id=1", nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/products/getProductById?id=1", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = s.do(t, http.MethodDelete, "/api/products/deleteProductbyId?id=1", nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	for _, sku := range []string{"A-1", "A-2"} {
		resp = s.do(t, http.MethodPost, "/api/products/createProduct", map[string]any{"name": "Item", "sku": sku})
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp = s.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]model.ProductReadModel](t, resp), 2)

	resp = s.do(t, http.MethodGet, "/api/products/getProductByColor?color=green", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestCreateProductErrors(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/products/createProduct", map[string]any{"name": "Widget", "sku": "W-1"})
	require.Equal(t, http.StatusCreated, resp.Code)

	t.Run("Should reject duplicate sku with conflict", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/products/createProduct", map[string]any{"name": "Other", "sku": "W-1"})
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "DUPLICATE_SKU", decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should reject invalid fields with details", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/products/createProduct", map[string]any{
			"name":          "",
			"sku":           strings.Repeat("x", 21),
			"price":         1.234,
			"stockQuantity": -1,
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		res := decode[apierr.ErrorResponse](t, resp)
		require.NotNil(t, res.Details)
		fields := make([]string, 0, len(*res.Details))
		for _, d := range *res.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"name", "sku", "price", "stockQuantity"}, fields)
	})

	t.Run("Should reject price the store cannot hold", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/products/createProduct", map[string]any{
			"name":  "Yacht",
			"sku":   "Y-1",
			"price": 1e17,
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		res := decode[apierr.ErrorResponse](t, resp)
		require.NotNil(t, res.Details)
		require.Len(t, *res.Details, 1)
		assert.Equal(t, "price", (*res.Details)[0].Field)

		resp = s.do(t, http.MethodGet, "/api/products", nil)
		assert.NotContains(t, resp.Body.String(), "Y-1")
	})

	t.Run("Should reject malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products/createProduct", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+s.token)
		resp := httptest.NewRecorder()

		s.handler.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestUpdateProductErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should return not found for missing id", func(t *testing.T) {
		resp := s.do(t, http.MethodPut, "/api/products/updateProduct?id=42", map[string]any{"name": "Ghost", "sku": "G-1"})
		assert.Equal(t, http.StatusNotFound, resp.Code)

		resp = s.do(t, http.MethodGet, "/api/products", nil)
		assert.JSONEq(t, `[]`, resp.Body.String())
	})

	t.Run("Should reject invalid body", func(t *testing.T) {
		resp := s.do(t, http.MethodPut, "/api/products/updateProduct?id=1", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestQueryParameterErrors(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/api/products/getProductById",
		"/api/products/getProductById?id=abc",
		"/api/products/getProductByColor",
	} {
		resp := s.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code, target)
	}

	resp := s.do(t, http.MethodDelete, "/api/products/deleteProductbyId?id=x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should reject missing token", func(t *testing.T) {
		resp := s.doWithToken(t, http.MethodGet, "/api/products", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "UNAUTHORIZED", decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should reject tampered token", func(t *testing.T) {
		resp := s.doWithToken(t, http.MethodGet, "/api/products", nil, s.token+"x")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("Should issue a usable token on login", func(t *testing.T) {
		resp := s.doWithToken(t, http.MethodPost, "/login", map[string]string{"username": "admin", "password": "s3cret"}, "")
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Token     string    `json:"token"`
			TokenType string    `json:"tokenType"`
			ExpiresAt time.Time `json:"expiresAt"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "Bearer", body.TokenType)
		assert.True(t, body.ExpiresAt.After(time.Now()))

		resp = s.doWithToken(t, http.MethodGet, "/api/products", nil, body.Token)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Should reject wrong password", func(t *testing.T) {
		resp := s.doWithToken(t, http.MethodPost, "/login", map[string]string{"username": "admin", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should reject empty login body", func(t *testing.T) {
		resp := s.doWithToken(t, http.MethodPost, "/login", map[string]string{}, "")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestHealth(t *testing.T) {
	t.Run("Should be reachable without token", func(t *testing.T) {
		s := newTestServer(t, stubChecker{})
		resp := s.doWithToken(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, health.StatusHealthy, decode[health.Report](t, resp).Status)
	})

	t.Run("Should answer 503 when unhealthy", func(t *testing.T) {
		s := newTestServer(t, stubChecker{err: errors.New("db down")})
		resp := s.doWithToken(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Equal(t, health.StatusUnhealthy, decode[health.Report](t, resp).Status)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.doWithToken(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "catalog_http_requests_total")

	resp = s.doWithToken(t, http.MethodGet, "/docs/openapi.json", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
}
