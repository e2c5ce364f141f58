package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateInApp(ctx context.Context, n *InAppNotification) error
	ListInAppByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)

	CreateLog(ctx context.Context, log *NotificationLog) error
	UpdateLog(ctx context.Context, log *NotificationLog) error

	GetUserIDsByRole(ctx context.Context, roleName string) ([]uint, error)
	GetAttendeeUserIDs(ctx context.Context, eventID uint) ([]uint, error)
	GetAttendeeEmails(ctx context.Context, eventID uint) ([]string, error)
	GetEventOrganizerID(ctx context.Context, eventID uint) (uint, error)

	UpsertDeviceToken(ctx context.Context, token *FCMDeviceToken) error
	DeactivateDeviceToken(ctx context.Context, userID uint, deviceToken string) error
	GetActiveDeviceTokens(ctx context.Context, userID uint) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInAppByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []InAppNotification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *repository) MarkAsRead(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkAllAsRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *repository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateLog(ctx context.Context, log *NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) UpdateLog(ctx context.Context, log *NotificationLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

func (r *repository) GetUserIDsByRole(ctx context.Context, roleName string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id").
		Joins("JOIN user_roles ON users.role_id = user_roles.id").
		Where("user_roles.role_name = ? AND users.status = ?", roleName, "active").
		Scan(&ids).Error
	return ids, err
}

func (r *repository) GetAttendeeUserIDs(ctx context.Context, eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("event_attendees").
		Select("user_id").
		Where("event_id = ?", eventID).
		Order("registered_at ASC").
		Scan(&ids).Error
	return ids, err
}

func (r *repository) GetAttendeeEmails(ctx context.Context, eventID uint) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Table("event_attendees").
		Select("users.email").
		Joins("JOIN users ON users.id = event_attendees.user_id").
		Where("event_attendees.event_id = ?", eventID).
		Order("event_attendees.registered_at ASC").
		Scan(&emails).Error
	return emails, err
}

func (r *repository) GetEventOrganizerID(ctx context.Context, eventID uint) (uint, error) {
	var organizerID uint
	err := r.db.WithContext(ctx).
		Table("events").
		Select("organizer_id").
		Where("id = ?", eventID).
		Scan(&organizerID).Error
	if err != nil {
		return 0, err
	}
	if organizerID == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return organizerID, nil
}

func (r *repository) UpsertDeviceToken(ctx context.Context, token *FCMDeviceToken) error {
	var existing FCMDeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_token = ?", token.UserID, token.DeviceToken).
		First(&existing).Error
	if err == nil {
		existing.IsActive = true
		existing.LastUsedAt = token.LastUsedAt
		existing.DeviceType = token.DeviceType
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repository) DeactivateDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return r.db.WithContext(ctx).
		Model(&FCMDeviceToken{}).
		Where("user_id = ? AND device_token = ?", userID, deviceToken).
		Update("is_active", false).Error
}

func (r *repository) GetActiveDeviceTokens(ctx context.Context, userID uint) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&FCMDeviceToken{}).
		Select("device_token").
		Where("user_id = ? AND is_active = ?", userID, true).
		Scan(&tokens).Error
	return tokens, err
}
