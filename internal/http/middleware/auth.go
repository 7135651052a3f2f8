package middleware

import (
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/auth"
)

const bearerPrefix = "Bearer "

// ErrorHandlerFunc writes err as the response.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// Auth rejects requests without a valid bearer token and stores the token
// subject in the request context.
func Auth(validator auth.TokenValidator, onError ErrorHandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				onError(w, r, apperr.UnauthorizedErr)
				return
			}

			subject, err := validator.Validate(strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				onError(w, r, apperr.UnauthorizedErr.WrapParent(err))
				return
			}

			ctx := auth.NewContext(r.Context(), subject)
			recordSubject(ctx, subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
