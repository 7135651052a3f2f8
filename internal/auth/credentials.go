package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a username/password pair and returns the
// subject the issued token will carry.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (subject string, err error)
}

// StaticCredentials verifies against a fixed username → bcrypt hash table.
type StaticCredentials struct {
	users map[string][]byte
	// dummy is compared when the user is unknown. It carries the highest
	// configured cost so both failure paths take as long as the slowest
	// real comparison.
	dummy []byte
}

var _ CredentialVerifier = (*StaticCredentials)(nil)

func NewStaticCredentials(users map[string]string) (*StaticCredentials, error) {
	hashes := make(map[string][]byte, len(users))
	dummyCost := 0
	for username, hash := range users {
		cost, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			return nil, fmt.Errorf("user %q: invalid bcrypt hash: %w", username, err)
		}
		dummyCost = max(dummyCost, cost)
		hashes[username] = []byte(hash)
	}
	if dummyCost == 0 {
		dummyCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), dummyCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &StaticCredentials{users: hashes, dummy: dummy}, nil
}

func (c *StaticCredentials) Verify(_ context.Context, username, password string) (string, error) {
	hash, ok := c.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(c.dummy, []byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return username, nil
}
