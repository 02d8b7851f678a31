package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

const maxScanRunPage = 100

type ScanRunRepository interface {
	Create(ctx context.Context, r *domain.ScanRun) error
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error)
}

type GormScanRunRepo struct {
	db *gorm.DB
}

func NewGormScanRunRepo(db *gorm.DB) *GormScanRunRepo {
	return &GormScanRunRepo{db: db}
}

func (r *GormScanRunRepo) Create(ctx context.Context, run *domain.ScanRun) error {
	model := scanRunModelFromDomain(run)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if run != nil {
		*run = *scanRunModelToDomain(model)
	}
	return nil
}

// ListRecent returns the user's latest runs, newest first. limit is clamped
// to [1, 100].
func (r *GormScanRunRepo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.ScanRun, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxScanRunPage {
		limit = maxScanRunPage
	}

	var models []ScanRunModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	runs := make([]domain.ScanRun, 0, len(models))
	for i := range models {
		runs = append(runs, *scanRunModelToDomain(&models[i]))
	}
	return runs, nil
}
