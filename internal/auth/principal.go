package auth

import "github.com/havirkesht/backend/internal/models"

type principalKind int

const (
	kindBypassed principalKind = iota + 1
	kindAuthenticated
)

// Principal is the outcome of a successful gate check. It is either
// Bypassed (authentication is disabled, nobody was checked) or
// Authenticated with the loaded user. The zero value is neither.
type Principal struct {
	kind principalKind
	user *models.User
}

func Bypassed() Principal {
	return Principal{kind: kindBypassed}
}

func Authenticated(u *models.User) Principal {
	return Principal{kind: kindAuthenticated, user: u}
}

func (p Principal) IsBypassed() bool {
	return p.kind == kindBypassed
}

func (p Principal) User() (*models.User, bool) {
	if p.kind != kindAuthenticated || p.user == nil {
		return nil, false
	}
	return p.user, true
}
