package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/events"
	"github.com/havirkesht/backend/internal/hash"
	"github.com/havirkesht/backend/internal/logging"
	"github.com/havirkesht/backend/internal/models"
	"github.com/havirkesht/backend/internal/repo"
	"github.com/havirkesht/backend/internal/tokens"
)

type CredentialStore interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uint, digest string) error
}

type RevocationStore interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AuthService struct {
	Users       CredentialStore
	Revocations RevocationStore
	Codec       *tokens.Codec
	Hasher      *hash.Hasher
	Events      events.Publisher
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Users.FindUserByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		l.Warn("login_failed", "status", 401, "reason", "unknown username")
		return nil, auth.ErrUnauthenticated
	}
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	ok, err := s.Hasher.CheckPassword(user.PasswordHash, password)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "stored password digest is malformed", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, auth.ErrUnauthenticated
	}
	if user.Disabled {
		l.Warn("login_failed", "status", 403, "reason", "user is disabled")
		return nil, auth.ErrForbidden
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, events.Event{Type: events.UserLoggedIn, UserID: user.ID, Username: user.Username})
	l.Info("login_success", "user_id", user.ID)
	return pair, nil
}

// Refresh issues a new pair for a valid refresh token. The presented token
// stays usable unless revokeOld is set.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, revokeOld bool) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh_token is required", ErrValidation)
	}

	revoked, err := s.Revocations.IsRevoked(ctx, refreshToken)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if revoked {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token is revoked")
		return nil, auth.ErrTokenRevoked
	}

	claims, err := s.Codec.DecodeRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, err
	}
	if claims.Type != tokens.TypeRefresh {
		l.Warn("refresh_failed", "status", 401, "reason", "not a refresh token")
		return nil, fmt.Errorf("%w: not a refresh token", auth.ErrInvalidToken)
	}

	id, err := tokens.SubjectID(claims)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.FindUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		l.Warn("refresh_failed", "status", 401, "reason", "user not found", "user_id", id)
		return nil, auth.ErrUnauthenticated
	}
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if user.Disabled {
		l.Warn("refresh_failed", "status", 403, "reason", "user is disabled", "user_id", id)
		return nil, auth.ErrForbidden
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	if revokeOld {
		if err := s.Revocations.Revoke(ctx, refreshToken); err != nil {
			l.Error("refresh_failed", "status", 500, "reason", "cannot revoke old refresh token", "error", err)
			return nil, err
		}
	}

	s.publish(ctx, events.Event{Type: events.TokensRefreshed, UserID: user.ID, Username: user.Username})
	l.Info("refresh_success", "user_id", user.ID, "revoked_old", revokeOld)
	return pair, nil
}

// Logout revokes whichever tokens are present. Tokens are not decoded first,
// so expired or foreign strings are listed too.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if accessToken == "" && refreshToken == "" {
		return fmt.Errorf("%w: access_token or refresh_token is required", ErrValidation)
	}

	for _, tok := range []string{accessToken, refreshToken} {
		if err := s.Revocations.Revoke(ctx, tok); err != nil {
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
			return err
		}
	}

	ev := events.Event{Type: events.UserLoggedOut}
	if claims, err := s.Codec.DecodeAccess(accessToken); err == nil {
		if id, err := tokens.SubjectID(claims); err == nil {
			ev.UserID = id
		}
	}
	s.publish(ctx, ev)

	l.Info("logout_success")
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, p auth.Principal, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password")

	user, ok := p.User()
	if !ok {
		l.Warn("change_password_failed", "status", 401, "reason", "no authenticated user", "bypassed", p.IsBypassed())
		return auth.ErrUnauthenticated
	}
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old_password and new_password are required", ErrValidation)
	}

	match, err := s.Hasher.CheckPassword(user.PasswordHash, oldPassword)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "reason", "stored password digest is malformed", "user_id", user.ID, "error", err)
		return err
	}
	if !match {
		l.Warn("change_password_failed", "status", 400, "reason", "old password is incorrect", "user_id", user.ID)
		return ErrOldPasswordIncorrect
	}

	digest, err := s.Hasher.HashPassword(newPassword)
	if err != nil {
		l.Warn("change_password_failed", "status", 400, "reason", "cannot hash new password", "error", err)
		return err
	}
	if err := s.Users.UpdatePassword(ctx, user.ID, digest); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return err
	}

	s.publish(ctx, events.Event{Type: events.PasswordChanged, UserID: user.ID, Username: user.Username})
	l.Info("change_password_success", "user_id", user.ID)
	return nil
}

func (s *AuthService) issuePair(id uint) (*TokenPair, error) {
	access, _, err := s.Codec.IssueAccess(id)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.Codec.IssueRefresh(id)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *AuthService) publish(ctx context.Context, ev events.Event) {
	publishEvent(ctx, s.Events, ev)
}

func publishEvent(ctx context.Context, pub events.Publisher, ev events.Event) {
	if pub == nil {
		return
	}
	key := ""
	if ev.UserID != 0 {
		key = strconv.FormatUint(uint64(ev.UserID), 10)
	}
	if err := pub.Publish(ctx, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", ev.Type, "error", err)
	}
}
