package config

import "time"

type Auth struct {
	JWTSecret   string        `env:"AUTH_JWT_SECRET,required,notEmpty"`
	JWTIssuer   string        `env:"AUTH_JWT_ISSUER" envDefault:"product-catalog"`
	JWTAudience string        `env:"AUTH_JWT_AUDIENCE" envDefault:"product-catalog-api"`
	TokenTTL    time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`

	// Users maps usernames to bcrypt password hashes, e.g. "admin:$2a$10$...".
	Users map[string]string `env:"AUTH_USERS" envSeparator:"," envKeyValSeparator:":"`
}
