package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUserAlreadyExist     = errors.New("user already exist")
	ErrProvinceAlreadyExist = errors.New("province already exist")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// ListQuery is an already validated page request. Column must be a real
// column name; the service layer owns the whitelist.
type ListQuery struct {
	Offset int
	Limit  int
	Column string
	Desc   bool
	Search string
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func page(tx *gorm.DB, q ListQuery) *gorm.DB {
	if q.Column != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Column}, Desc: q.Desc})
	}
	return tx.Offset(q.Offset).Limit(q.Limit)
}

func count(tx *gorm.DB) (int64, error) {
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}
