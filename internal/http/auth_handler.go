package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/auth"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type authHandler struct {
	credentials auth.CredentialVerifier
	issuer      auth.TokenIssuer
	validate    validator.Validator
}

func newAuthHandler(credentials auth.CredentialVerifier, issuer auth.TokenIssuer, validate validator.Validator) *authHandler {
	return &authHandler{
		credentials: credentials,
		issuer:      issuer,
		validate:    validate,
	}
}

func (h *authHandler) Login(r *http.Request) (response, error) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return response{}, err
	}
	if err := h.validate.Validate(req); err != nil {
		return response{}, apperr.ValidationErr.WrapParent(err)
	}

	subject, err := h.credentials.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response{}, apperr.InvalidCredentialsErr
		}
		return response{}, fmt.Errorf("verify credentials: %w", err)
	}

	token, err := h.issuer.Issue(subject)
	if err != nil {
		return response{}, fmt.Errorf("issue token: %w", err)
	}

	return ok(loginResponse{
		Token:     token.Value,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt,
	}), nil
}
