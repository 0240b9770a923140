package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/havirkesht/backend/internal/logging"
	"github.com/havirkesht/backend/internal/models"
	"github.com/havirkesht/backend/internal/repo"
)

type ProvinceStore interface {
	CreateProvince(ctx context.Context, p *models.Province) error
	ListProvinces(ctx context.Context, q repo.ListQuery) (int64, []models.Province, error)
	DeleteProvinceByName(ctx context.Context, name string) error
}

var provinceSort = sortSpec{columns: map[string]string{
	"id":         "id",
	"province":   "province",
	"created_at": "created_at",
}, defCol: "id", defDesc: true}

type ProvinceService struct {
	Provinces ProvinceStore
}

func (s *ProvinceService) Create(ctx context.Context, name string) (*models.Province, error) {
	l := logging.FromContext(ctx).With("svc", "province.create")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: province is required", ErrValidation)
	}

	p := &models.Province{Name: name}
	if err := s.Provinces.CreateProvince(ctx, p); err != nil {
		if errors.Is(err, repo.ErrProvinceAlreadyExist) {
			l.Warn("create_province_failed", "status", 409, "province", name)
			return nil, fmt.Errorf("%w: province already exists", ErrConflict)
		}
		l.Error("create_province_failed", "status", 500, "error", err)
		return nil, err
	}
	return p, nil
}

// List defaults to newest first.
func (s *ProvinceService) List(ctx context.Context, p ListParams) (Page[models.Province], error) {
	q, size, err := listQuery(p, provinceSort)
	if err != nil {
		return Page[models.Province]{}, err
	}
	total, items, err := s.Provinces.ListProvinces(ctx, q)
	if err != nil {
		return Page[models.Province]{}, err
	}
	return newPage(total, size, items), nil
}

func (s *ProvinceService) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: province is required", ErrValidation)
	}
	if err := s.Provinces.DeleteProvinceByName(ctx, name); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: province", ErrNotFound)
		}
		return err
	}
	logging.FromContext(ctx).Info("delete_province_success", "province", name)
	return nil
}
