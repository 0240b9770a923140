package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/havirkesht/backend/internal/models"
)

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(u)
	if tx.Error != nil {
		return fmt.Errorf("create user: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

// UpdateUser overwrites every editable column, zero values included.
func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Select("id", "username").Where("id = ?", u.ID).First(&existing).Error; err != nil {
			return notFound(err)
		}

		if existing.Username != u.Username {
			var n int64
			if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", u.Username, u.ID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrUserAlreadyExist
			}
		}

		return tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"username":     u.Username,
			"password":     u.PasswordHash,
			"fullname":     u.FullName,
			"email":        u.Email,
			"phone_number": u.PhoneNumber,
			"disabled":     u.Disabled,
			"role_id":      u.RoleID,
		}).Error
	})
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id uint, digest string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", digest)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListUsers(ctx context.Context, q ListQuery) (int64, []models.User, error) {
	base := r.DB.WithContext(ctx).Model(&models.User{})
	if q.Search != "" {
		p := likePattern(q.Search)
		base = base.Where(
			`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(fullname) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(phone_number) LIKE ? ESCAPE '\'`,
			p, p, p, p,
		)
	}

	total, err := count(base.Session(&gorm.Session{}))
	if err != nil {
		return 0, nil, err
	}

	var items []models.User
	if err := page(base.Session(&gorm.Session{}), q).Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("list users: %w", err)
	}
	return total, items, nil
}

func (r *GormRepo) RoleExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) EnsureRoles(ctx context.Context, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&roles).Error
}
