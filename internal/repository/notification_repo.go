package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

type NotificationRepository interface {
	Append(ctx context.Context, n domain.Notification) (domain.Notification, error)
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

// Append validates and inserts n and returns it with id and created_at set
// by the store.
func (r *GormNotificationRepo) Append(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}
	model := notificationModelFromDomain(&n)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.Notification{}, err
	}
	return *notificationModelToDomain(model), nil
}

// List returns the user's notifications newest first.
func (r *GormNotificationRepo) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(models))
	for i := range models {
		notifications = append(notifications, *notificationModelToDomain(&models[i]))
	}
	return notifications, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds.
func (r *GormNotificationRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
