package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/events"
	"github.com/havirkesht/backend/internal/hash"
	"github.com/havirkesht/backend/internal/logging"
	"github.com/havirkesht/backend/internal/models"
	"github.com/havirkesht/backend/internal/repo"
)

type UserStore interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context, q repo.ListQuery) (int64, []models.User, error)
	RoleExists(ctx context.Context, id uint) (bool, error)
}

type UserInput struct {
	Username    string
	Password    string
	FullName    string
	Email       string
	PhoneNumber string
	RoleID      uint
	Disabled    bool
}

var userSort = sortSpec{columns: map[string]string{
	"id":           "id",
	"username":     "username",
	"email":        "email",
	"fullname":     "fullname",
	"phone_number": "phone_number",
	"role_id":      "role_id",
	"disabled":     "disabled",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}, defCol: "id", orderOnDefault: true}

type UserService struct {
	Users  UserStore
	Hasher *hash.Hasher
	Events events.Publisher
}

func (s *UserService) validate(ctx context.Context, in *UserInput) error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	ok, err := s.Users.RoleExists(ctx, in.RoleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidRole
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create", "username", in.Username)

	if err := s.validate(ctx, &in); err != nil {
		l.Warn("create_user_failed", "status", 400, "error", err)
		return nil, err
	}

	digest, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		l.Warn("create_user_failed", "status", 400, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	u := &models.User{
		Username:     in.Username,
		PasswordHash: digest,
		FullName:     in.FullName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Disabled:     in.Disabled,
		RoleID:       in.RoleID,
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("create_user_failed", "status", 409, "reason", "username already exists")
			return nil, fmt.Errorf("%w: username already exists", ErrConflict)
		}
		l.Error("create_user_failed", "status", 500, "error", err)
		return nil, err
	}

	publishEvent(ctx, s.Events, events.Event{Type: events.UserCreated, UserID: u.ID, Username: u.Username})
	l.Info("create_user_success", "user_id", u.ID)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Users.FindUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return u, err
}

// Update replaces every field of the user, password included.
func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update", "user_id", id)

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in); err != nil {
		l.Warn("update_user_failed", "status", 400, "error", err)
		return nil, err
	}

	digest, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           id,
		Username:     in.Username,
		PasswordHash: digest,
		FullName:     in.FullName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Disabled:     in.Disabled,
		RoleID:       in.RoleID,
	}
	if err := s.Users.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrUserAlreadyExist):
			l.Warn("update_user_failed", "status", 409, "reason", "username already exists")
			return nil, fmt.Errorf("%w: username already exists", ErrConflict)
		case errors.Is(err, repo.ErrNotFound):
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		l.Error("update_user_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("update_user_success")
	return s.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context, p ListParams) (Page[models.User], error) {
	q, size, err := listQuery(p, userSort)
	if err != nil {
		return Page[models.User]{}, err
	}
	total, items, err := s.Users.ListUsers(ctx, q)
	if err != nil {
		return Page[models.User]{}, err
	}
	return newPage(total, size, items), nil
}

// EnsureAdmin creates an administrator account unless the username is taken.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.Create(ctx, UserInput{Username: username, Password: password, RoleID: auth.RoleAdmin})
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}
