package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Token is a signed access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(subject string) (Token, error)
}

type TokenValidator interface {
	// Validate returns the subject of a valid token.
	Validate(token string) (subject string, err error)
}

// JWT issues and validates HS256 tokens.
type JWT struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

var (
	_ TokenIssuer    = (*JWT)(nil)
	_ TokenValidator = (*JWT)(nil)
)

func NewJWT(cfg config.Auth) *JWT {
	j := &JWT{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.TokenTTL,
		now:      time.Now,
	}
	j.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithAudience(cfg.JWTAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return j.now() }),
	)
	return j
}

// WithClock overrides the clock used for iat/exp and validation.
func (j *JWT) WithClock(now func() time.Time) *JWT {
	j.now = now
	return j
}

func (j *JWT) Issue(subject string) (Token, error) {
	now := j.now()
	expiresAt := now.Add(j.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.audience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (j *JWT) Validate(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := j.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

type subjectKey struct{}

// NewContext returns a copy of ctx carrying the authenticated subject.
func NewContext(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok && subject != ""
}
