package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the bcrypt input ceiling. Longer inputs are rejected
// instead of being silently truncated.
const MaxPasswordBytes = 72

var (
	ErrInputTooLong    = errors.New("password is too long (bcrypt limit is 72 bytes)")
	ErrMalformedDigest = errors.New("stored password digest is malformed")
)

type Hasher struct {
	Cost int
}

func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

func (h *Hasher) HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrInputTooLong
	}

	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}

	return string(hashbytes), nil
}

// CheckPassword reports whether password matches digest. A mismatch is not an
// error; only a digest that bcrypt cannot parse is.
func (h *Hasher) CheckPassword(digest, password string) (bool, error) {
	if len(password) > MaxPasswordBytes {
		if _, err := bcrypt.Cost([]byte(digest)); err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
		}
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
}
