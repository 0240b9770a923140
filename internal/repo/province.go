package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/havirkesht/backend/internal/models"
)

func (r *GormRepo) CreateProvince(ctx context.Context, p *models.Province) error {
	tx := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "province"}}, DoNothing: true}).
		Create(p)
	if tx.Error != nil {
		return fmt.Errorf("create province: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrProvinceAlreadyExist
	}
	return nil
}

func (r *GormRepo) ListProvinces(ctx context.Context, q ListQuery) (int64, []models.Province, error) {
	base := r.DB.WithContext(ctx).Model(&models.Province{})
	if q.Search != "" {
		base = base.Where(`LOWER(province) LIKE ? ESCAPE '\'`, likePattern(q.Search))
	}

	total, err := count(base.Session(&gorm.Session{}))
	if err != nil {
		return 0, nil, err
	}

	var items []models.Province
	if err := page(base.Session(&gorm.Session{}), q).Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("list provinces: %w", err)
	}
	return total, items, nil
}

func (r *GormRepo) DeleteProvinceByName(ctx context.Context, name string) error {
	res := r.DB.WithContext(ctx).Where("province = ?", name).Delete(&models.Province{})
	if res.Error != nil {
		return fmt.Errorf("delete province: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
