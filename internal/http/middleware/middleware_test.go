package middleware_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/auth"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-catalog/internal/metric"
	"github.com/tuanvumaihuynh/product-catalog/pkg/correlationid"
)

type stubValidator struct{}

func (stubValidator) Validate(token string) (string, error) {
	if token == "good" {
		return "admin", nil
	}
	return "", auth.ErrInvalidToken
}

func TestAuth(t *testing.T) {
	var gotErr error
	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}

	var subject string
	h := middleware.Auth(stubValidator{}, onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = auth.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "Should pass with valid token", header: "Bearer good", wantStatus: http.StatusOK},
		{name: "Should accept lowercase scheme", header: "bearer good", wantStatus: http.StatusOK},
		{name: "Should reject missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "Should reject other scheme", header: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized},
		{name: "Should reject invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr, subject = nil, ""

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()

			h.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "admin", subject)
				return
			}
			assert.True(t, errors.Is(gotErr, apperr.UnauthorizedErr))
		})
	}
}

func TestCorrelationID(t *testing.T) {
	var seen string
	h := middleware.CorrelationID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = correlationid.FromContext(r.Context())
	}))

	t.Run("Should propagate incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(correlationid.Header, "abc-123")
		resp := httptest.NewRecorder()

		h.ServeHTTP(resp, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", resp.Header().Get(correlationid.Header))
	})

	t.Run("Should generate id when absent", func(t *testing.T) {
		resp := httptest.NewRecorder()

		h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, resp.Header().Get(correlationid.Header))
	})
}

func TestRecoverer(t *testing.T) {
	h := middleware.Recoverer(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestMetrics(t *testing.T) {
	m := metric.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(middleware.Metrics(m))
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/products", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InflightRequests))
}
