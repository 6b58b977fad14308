package repository

import (
	"gorm.io/gorm"

	"github.com/taskboard/taskboard-backend/internal/domain"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(notification *domain.Notification) error
	FindByUserID(userID string) ([]domain.Notification, error)
	MarkAsRead(id string) error
	MarkAllAsRead(userID string) error
	CountUnread(userID string) (int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM notification repository
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(notification *domain.Notification) error {
	return r.db.Create(notification).Error
}

// FindByUserID returns a user's notifications, newest first, with the related
// task summary attached.
func (r *gormNotificationRepository) FindByUserID(userID string) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.Preload("Task").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *gormNotificationRepository) MarkAsRead(id string) error {
	result := r.db.Model(&domain.Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *gormNotificationRepository) MarkAllAsRead(userID string) error {
	return r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *gormNotificationRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
