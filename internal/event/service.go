package event

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/category"
	"github.com/karthikeyan-cs/event-management-backend/utils"
)

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrOrganizerNotFound      = errors.New("organizer not found")
	ErrInvalidCategory        = errors.New("category does not exist")
	ErrDeadlineAfterEventDate = errors.New("registration deadline must be before event date")
	ErrEventDateNotFuture     = errors.New("event date must be in the future")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidStatus          = errors.New("invalid event status")
	ErrAwaitingApproval       = errors.New("event submitted and awaiting admin approval")
	ErrCannotDelete           = errors.New("only upcoming events can be deleted")
	ErrNotOwner               = errors.New("cannot modify another organizer's event")
	ErrEventFull              = errors.New("event is full")
	ErrSlotsBelowAttendees    = errors.New("total slots cannot be below the current attendee count")
	ErrAlreadyRegistered      = errors.New("already registered for this event")
	ErrRegistrationClosed     = errors.New("registration deadline has passed")
	ErrPaymentRequired        = errors.New("payment required for this event")
)

// UserStore is the slice of the auth repository the event service needs.
type UserStore interface {
	FindByID(userID uint) (auth.User, error)
}

// CategoryStore is the slice of the category repository the event service needs.
type CategoryStore interface {
	GetByID(ctx context.Context, id uint) (*category.Category, error)
}

// Notifier fans out in-app notifications. Set after construction; nil
// disables the side channel.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uint, title, message, category string, eventID *uint) error
	NotifyRole(ctx context.Context, role, title, message, category string, eventID *uint) error
	NotifyAttendees(ctx context.Context, eventID uint, title, message, category string) error
}

// Service wraps business logic for the event lifecycle
type Service struct {
	Repo       Repository
	Users      UserStore
	Categories CategoryStore
	AuditSvc   auditlog.Service
	NotifSvc   Notifier

	// ListEvents hides non-public events unless this flag is on.
	IncludePrivateInListing bool
}

func NewService(r Repository, users UserStore, categories CategoryStore, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:       r,
		Users:      users,
		Categories: categories,
		AuditSvc:   auditSvc,
	}
}

// ===========================
// 🎯 Create Event
//
// An unapproved organizer's event is persisted with status "pending"
// and the call reports ErrAwaitingApproval alongside the stored event.
// An approved organizer gets the requested status, defaulting to
// "upcoming".
func (s *Service) CreateEvent(ctx context.Context, organizerID uint, req *CreateEventRequest, ip string) (*Event, error) {
	organizer, err := s.Users.FindByID(organizerID)
	if err != nil {
		s.logFailure(ctx, organizerID, nil, "EVENT_CREATED", map[string]interface{}{
			"event_name": req.EventName, "error": "organizer not found",
		}, ip)
		return nil, ErrOrganizerNotFound
	}

	name := strings.TrimSpace(req.EventName)
	description := strings.TrimSpace(req.Description)
	location := strings.TrimSpace(req.Location)
	if name == "" || description == "" || location == "" {
		return nil, ErrValidation
	}
	if req.TotalSlots < 1 {
		return nil, ErrValidation
	}
	if req.Price < 0 {
		return nil, ErrValidation
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, errors.New("invalid event_date format. Use YYYY-MM-DD")
	}
	deadline, err := time.Parse("2006-01-02", req.RegistrationDeadline)
	if err != nil {
		return nil, errors.New("invalid registration_deadline format. Use YYYY-MM-DD")
	}
	if !eventDate.After(time.Now()) {
		return nil, ErrEventDateNotFuture
	}
	if !deadline.Before(eventDate) {
		return nil, ErrDeadlineAfterEventDate
	}
	if req.EventTime != "" {
		if _, err := time.Parse("15:04", req.EventTime); err != nil {
			return nil, errors.New("invalid time format. Use HH:MM in 24-hour format")
		}
	}

	if _, err := s.Categories.GetByID(ctx, req.CategoryID); err != nil {
		s.logFailure(ctx, organizerID, nil, "EVENT_CREATED", map[string]interface{}{
			"event_name": name, "category_id": req.CategoryID, "error": "invalid category",
		}, ip)
		return nil, ErrInvalidCategory
	}

	status := StatusUpcoming
	if req.Status != "" {
		if !ValidStatuses[req.Status] {
			return nil, ErrInvalidStatus
		}
		status = req.Status
	}

	pending := !organizer.IsApproved
	if pending {
		status = StatusPending
	}

	tags := trimTags(req.Tags)
	tagsJSON, _ := json.Marshal(tags)

	e := &Event{
		EventName:            name,
		Description:          description,
		Location:             location,
		EventDate:            eventDate,
		EventTime:            req.EventTime,
		RegistrationDeadline: deadline,
		Price:                req.Price,
		CategoryID:           req.CategoryID,
		OrganizerID:          organizerID,
		TotalSlots:           req.TotalSlots,
		Tags:                 tagsJSON,
		Image:                req.Image,
		IsPublic:             status != StatusPending,
		Status:               status,
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		s.logFailure(ctx, organizerID, nil, "EVENT_CREATED", map[string]interface{}{
			"event_name": name, "error": err.Error(),
		}, ip)
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &organizerID, &e.ID, "EVENT_CREATED", map[string]interface{}{
		"event_name": e.EventName,
		"event_date": e.EventDate.Format("2006-01-02"),
		"status":     e.Status,
	}, ip, "success")

	if pending {
		utils.PublishNotification(utils.NotificationMessage{
			Type:      "event_submitted",
			ForRole:   "admin",
			UserID:    organizerID,
			EventID:   e.ID,
			EventName: e.EventName,
			Message:   e.EventName + " submitted for approval",
		})
		return e, ErrAwaitingApproval
	}

	return e, nil
}

// ===========================
// 📄 List Events (public listing)
func (s *Service) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	filter.IncludePrivate = s.IncludePrivateInListing
	events, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// ===========================
// 🔍 Get Event by ID
func (s *Service) GetEventByID(ctx context.Context, id uint) (*Event, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	attendees, err := s.Repo.ListAttendees(ctx, id)
	if err == nil {
		e.Attendees = attendees
	}

	return e, nil
}

// GetEventsByOrganizer returns an empty slice when the organizer has no
// events, never a not-found error.
func (s *Service) GetEventsByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	events, err := s.Repo.GetByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// ===========================
// 🛠 Update Event
//
// Date, deadline, slot and category invariants are re-validated against
// the merged record, not trusted from creation time.
func (s *Service) UpdateEvent(ctx context.Context, id uint, req *UpdateEventRequest, actor auth.User, ip string) (*Event, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if actor.Role.RoleName != "admin" && e.OrganizerID != actor.ID {
		s.logFailure(ctx, actor.ID, &id, "EVENT_UPDATED", map[string]interface{}{
			"error": "not owner",
		}, ip)
		return nil, ErrNotOwner
	}

	if req.EventName != nil {
		name := strings.TrimSpace(*req.EventName)
		if name == "" {
			return nil, ErrValidation
		}
		e.EventName = name
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			return nil, ErrValidation
		}
		e.Description = desc
	}
	if req.Location != nil {
		loc := strings.TrimSpace(*req.Location)
		if loc == "" {
			return nil, ErrValidation
		}
		e.Location = loc
	}
	if req.EventDate != nil {
		eventDate, err := time.Parse("2006-01-02", *req.EventDate)
		if err != nil {
			return nil, errors.New("invalid event_date format. Use YYYY-MM-DD")
		}
		if !eventDate.After(time.Now()) {
			return nil, ErrEventDateNotFuture
		}
		e.EventDate = eventDate
	}
	if req.RegistrationDeadline != nil {
		deadline, err := time.Parse("2006-01-02", *req.RegistrationDeadline)
		if err != nil {
			return nil, errors.New("invalid registration_deadline format. Use YYYY-MM-DD")
		}
		e.RegistrationDeadline = deadline
	}
	if !e.RegistrationDeadline.Before(e.EventDate) {
		return nil, ErrDeadlineAfterEventDate
	}
	if req.EventTime != nil {
		if *req.EventTime != "" {
			if _, err := time.Parse("15:04", *req.EventTime); err != nil {
				return nil, errors.New("invalid time format. Use HH:MM in 24-hour format")
			}
		}
		e.EventTime = *req.EventTime
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrValidation
		}
		e.Price = *req.Price
	}
	if req.TotalSlots != nil {
		if *req.TotalSlots < 1 {
			return nil, ErrValidation
		}
		registered, err := s.Repo.CountAttendees(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if *req.TotalSlots < registered {
			return nil, ErrSlotsBelowAttendees
		}
		e.TotalSlots = *req.TotalSlots
	}
	if req.CategoryID != nil {
		if _, err := s.Categories.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, ErrInvalidCategory
		}
		e.CategoryID = *req.CategoryID
	}
	if req.Tags != nil {
		tagsJSON, _ := json.Marshal(trimTags(*req.Tags))
		e.Tags = tagsJSON
	}
	if req.Image != nil {
		e.Image = *req.Image
	}
	if req.Status != nil {
		if !ValidStatuses[*req.Status] {
			return nil, ErrInvalidStatus
		}
		e.Status = *req.Status
	}

	if err := s.Repo.Update(ctx, e); err != nil {
		s.logFailure(ctx, actor.ID, &id, "EVENT_UPDATED", map[string]interface{}{
			"error": err.Error(),
		}, ip)
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &e.ID, "EVENT_UPDATED", map[string]interface{}{
		"event_name": e.EventName,
		"status":     e.Status,
	}, ip, "success")

	return s.GetEventByID(ctx, id)
}

// ===========================
// ❌ Delete Event
//
// Deletion is allowed only while the event is upcoming. Registered
// attendees get a cancellation notice but do not block the delete.
func (s *Service) DeleteEvent(ctx context.Context, id uint, actor auth.User, ip string) error {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if actor.Role.RoleName != "admin" && e.OrganizerID != actor.ID {
		return ErrNotOwner
	}

	if e.Status != StatusUpcoming {
		s.logFailure(ctx, actor.ID, &id, "EVENT_DELETED", map[string]interface{}{
			"event_name": e.EventName, "status": e.Status, "error": "wrong status",
		}, ip)
		return ErrCannotDelete
	}

	// The fan-out reads the registration rows, so it runs before the
	// delete removes them.
	if e.AttendeeCount > 0 && s.NotifSvc != nil {
		_ = s.NotifSvc.NotifyAttendees(ctx, e.ID, "Event Cancelled",
			e.EventName+" has been cancelled", "event_cancelled")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		s.logFailure(ctx, actor.ID, &id, "EVENT_DELETED", map[string]interface{}{
			"event_name": e.EventName, "error": err.Error(),
		}, ip)
		return err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &id, "EVENT_DELETED", map[string]interface{}{
		"event_name": e.EventName,
		"attendees":  e.AttendeeCount,
	}, ip, "success")

	return nil
}

// ===========================
// 🎟 Register Attendee
//
// The capacity invariant lives in the repository's conditional insert;
// this method layers the deadline and payment gates on top.
func (s *Service) RegisterAttendee(ctx context.Context, eventID, userID uint, paid bool, ip string) error {
	e, err := s.Repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if _, err := s.Users.FindByID(userID); err != nil {
		return errors.New("user not found")
	}

	if time.Now().After(e.RegistrationDeadline) {
		return ErrRegistrationClosed
	}

	if e.Price > 0 && !paid {
		return ErrPaymentRequired
	}

	inserted, err := s.Repo.AddAttendee(ctx, eventID, userID, e.TotalSlots)
	if err != nil {
		return err
	}
	if !inserted {
		// Zero rows means either the unique pair or the capacity
		// condition blocked the insert; tell them apart.
		already, checkErr := s.Repo.IsAttendee(ctx, eventID, userID)
		if checkErr == nil && already {
			return ErrAlreadyRegistered
		}
		s.logFailure(ctx, userID, &eventID, "EVENT_REGISTRATION", map[string]interface{}{
			"event_name": e.EventName, "error": "event full",
		}, ip)
		return ErrEventFull
	}

	s.AuditSvc.LogAction(ctx, &userID, &eventID, "EVENT_REGISTRATION", map[string]interface{}{
		"event_name": e.EventName,
	}, ip, "success")

	if s.NotifSvc != nil {
		_ = s.NotifSvc.NotifyUser(ctx, e.OrganizerID, "New Registration",
			"A new attendee registered for "+e.EventName, "registration", &eventID)
	}

	return nil
}

// ListAttendees returns the registered attendees in registration order.
func (s *Service) ListAttendees(ctx context.Context, eventID uint) ([]AttendeeInfo, error) {
	if _, err := s.Repo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	attendees, err := s.Repo.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []AttendeeInfo{}
	}
	return attendees, nil
}

func (s *Service) logFailure(ctx context.Context, userID uint, eventID *uint, action string, details map[string]interface{}, ip string) {
	s.AuditSvc.LogAction(ctx, &userID, eventID, action, details, ip, "failure")
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
