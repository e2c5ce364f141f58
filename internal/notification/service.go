package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/utils"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotEventOwner = errors.New("cannot email another organizer's attendees")
	ErrNoAttendees   = errors.New("event has no registered attendees")
)

type Service interface {
	// In-app notifications
	CreateInAppNotification(ctx context.Context, userID uint, forRole string, eventID *uint, title, message, category string) error
	ListInAppByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)

	// Fan-out helpers (event.Notifier)
	NotifyUser(ctx context.Context, userID uint, title, message, category string, eventID *uint) error
	NotifyRole(ctx context.Context, role, title, message, category string, eventID *uint) error
	NotifyAttendees(ctx context.Context, eventID uint, title, message, category string) error

	// Outbound channels
	SendEmailNotification(ctx context.Context, senderID uint, eventID *uint, subject, body string, recipients []string) error
	EmailEventAttendees(ctx context.Context, eventID, senderID uint, isAdmin bool, subject, body string) error

	// FCM device tokens
	RegisterDeviceToken(ctx context.Context, userID uint, deviceToken, deviceType string) error
	RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error
	SendPushToUser(ctx context.Context, userID uint, title, body string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateInAppNotification stores a bell notification and publishes it to
// the user's Redis channel for any open SSE stream.
func (s *service) CreateInAppNotification(ctx context.Context, userID uint, forRole string, eventID *uint, title, message, category string) error {
	n := &InAppNotification{
		UserID:   userID,
		ForRole:  forRole,
		EventID:  eventID,
		Title:    title,
		Message:  message,
		Category: category,
	}

	if err := s.repo.CreateInApp(ctx, n); err != nil {
		return err
	}

	s.publishLive(ctx, n)
	return nil
}

// publishLive pushes the notification over Redis pub/sub, best-effort.
func (s *service) publishLive(ctx context.Context, n *InAppNotification) {
	if utils.RedisClient == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	channel := fmt.Sprintf("notifications:%d", n.UserID)
	if err := utils.RedisClient.Publish(ctx, channel, payload).Err(); err != nil {
		fmt.Printf("⚠️ redis publish failed for user %d: %v\n", n.UserID, err)
	}
}

func (s *service) ListInAppByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error) {
	notifications, err := s.repo.ListInAppByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []InAppNotification{}
	}
	return notifications, nil
}

func (s *service) MarkInAppAsRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// =============================
// Fan-out helpers
// =============================

func (s *service) NotifyUser(ctx context.Context, userID uint, title, message, category string, eventID *uint) error {
	err := s.CreateInAppNotification(ctx, userID, "", eventID, title, message, category)
	if err != nil {
		return err
	}
	_ = s.SendPushToUser(ctx, userID, title, message)
	return nil
}

func (s *service) NotifyRole(ctx context.Context, role, title, message, category string, eventID *uint) error {
	ids, err := s.repo.GetUserIDsByRole(ctx, role)
	if err != nil {
		return err
	}

	var firstErr error
	for _, id := range ids {
		if err := s.CreateInAppNotification(ctx, id, role, eventID, title, message, category); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *service) NotifyAttendees(ctx context.Context, eventID uint, title, message, category string) error {
	ids, err := s.repo.GetAttendeeUserIDs(ctx, eventID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, id := range ids {
		if err := s.NotifyUser(ctx, id, title, message, category, &eventID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// =============================
// Outbound channels
// =============================

// SendEmailNotification sends an email to each recipient and records the
// send in the notification log.
func (s *service) SendEmailNotification(ctx context.Context, senderID uint, eventID *uint, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return errors.New("no recipients specified")
	}

	recipientsJSON, _ := json.Marshal(recipients)
	log := &NotificationLog{
		UserID:     senderID,
		EventID:    eventID,
		Channel:    "email",
		Subject:    subject,
		Body:       body,
		Recipients: datatypes.JSON(recipientsJSON),
		Status:     "pending",
	}

	if err := s.repo.CreateLog(ctx, log); err != nil {
		return err
	}

	var sendErr error
	for _, to := range recipients {
		if err := utils.SendEmail(to, subject, body); err != nil && sendErr == nil {
			sendErr = err
		}
	}

	if sendErr != nil {
		errMsg := sendErr.Error()
		log.Status = "failed"
		log.Error = &errMsg
	} else {
		log.Status = "sent"
	}
	log.UpdatedAt = time.Now()

	if err := s.repo.UpdateLog(ctx, log); err != nil {
		fmt.Printf("⚠️ notification log update failed: %v\n", err)
	}

	return sendErr
}

// EmailEventAttendees emails everyone registered for an event. Only the
// event's organizer or an admin may send.
func (s *service) EmailEventAttendees(ctx context.Context, eventID, senderID uint, isAdmin bool, subject, body string) error {
	organizerID, err := s.repo.GetEventOrganizerID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if !isAdmin && organizerID != senderID {
		return ErrNotEventOwner
	}

	emails, err := s.repo.GetAttendeeEmails(ctx, eventID)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return ErrNoAttendees
	}

	id := eventID
	return s.SendEmailNotification(ctx, senderID, &id, subject, body, emails)
}

// =============================
// FCM
// =============================

func (s *service) RegisterDeviceToken(ctx context.Context, userID uint, deviceToken, deviceType string) error {
	if deviceToken == "" {
		return errors.New("device token is required")
	}
	return s.repo.UpsertDeviceToken(ctx, &FCMDeviceToken{
		UserID:      userID,
		DeviceToken: deviceToken,
		DeviceType:  deviceType,
		IsActive:    true,
		LastUsedAt:  time.Now(),
	})
}

func (s *service) RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return s.repo.DeactivateDeviceToken(ctx, userID, deviceToken)
}

func (s *service) SendPushToUser(ctx context.Context, userID uint, title, body string) error {
	if !utils.IsFCMEnabled() {
		return nil
	}
	tokens, err := s.repo.GetActiveDeviceTokens(ctx, userID)
	if err != nil || len(tokens) == 0 {
		return err
	}
	if err := utils.SendPushToTokens(ctx, tokens, title, body); err != nil {
		fmt.Printf("⚠️ push to user %d failed: %v\n", userID, err)
		return err
	}
	return nil
}
