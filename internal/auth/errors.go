package auth

import (
	"errors"
	"net/http"

	"github.com/havirkesht/backend/internal/tokens"
)

var (
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrTokenRevoked    = errors.New("token has been revoked")
	ErrInvalidToken    = tokens.ErrInvalidToken
	ErrForbidden       = errors.New("forbidden")
)

// HTTPStatus returns the response code for a gate error, or 0 when err is
// not one of them.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return 0
	}
}
