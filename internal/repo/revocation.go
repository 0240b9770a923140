package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/havirkesht/backend/internal/models"
)

func (r *GormRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ?", token).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return n > 0, nil
}

// Revoke inserts the token into the revocation list. Revoking a token that is
// already listed, including a concurrent duplicate insert, is not an error.
func (r *GormRepo) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	row := models.RevokedToken{Token: token}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return nil
}

func (r *GormRepo) CountRevoked(ctx context.Context, token string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).Where("token = ?", token).Count(&n).Error
	return n, err
}
