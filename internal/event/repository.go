package event

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uint) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]Event, error)
	GetByOrganizer(ctx context.Context, organizerID uint) ([]Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id uint) error

	// Attendance
	AddAttendee(ctx context.Context, eventID, userID uint, totalSlots int) (bool, error)
	IsAttendee(ctx context.Context, eventID, userID uint) (bool, error)
	CountAttendees(ctx context.Context, eventID uint) (int, error)
	ListAttendees(ctx context.Context, eventID uint) ([]AttendeeInfo, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Organizer.Role").
		Preload("Category").
		First(&e, id).Error
	if err != nil {
		return nil, err
	}

	count, err := r.CountAttendees(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.AttendeeCount = count

	return &e, nil
}

func (r *repository) List(ctx context.Context, filter EventFilter) ([]Event, error) {
	query := r.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Category").
		Model(&Event{})

	if !filter.IncludePrivate {
		query = query.Where("is_public = ?", true)
	}
	if filter.Search != "" {
		ilike := "%" + filter.Search + "%"
		query = query.Where("event_name ILIKE ? OR description ILIKE ?", ilike, ilike)
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		query = query.Where("event_date >= ? AND event_date < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}

	var events []Event
	err := query.Order("event_date ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}

	for i := range events {
		count, _ := r.CountAttendees(ctx, events[i].ID)
		events[i].AttendeeCount = count
	}

	return events, nil
}

func (r *repository) GetByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("organizer_id = ?", organizerID).
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	for i := range events {
		count, _ := r.CountAttendees(ctx, events[i].ID)
		events[i].AttendeeCount = count
	}

	return events, nil
}

func (r *repository) Update(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// Delete removes the event and its registrations in one transaction so
// no event_attendees rows outlive their event.
func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&EventAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Event{}, id).Error
	})
}

// AddAttendee appends a registration only while the attendee count is
// below totalSlots. The capacity check and the insert run as one
// statement, so two racing registrations at the last slot cannot both
// succeed. Returns false when no row was inserted (event full, or the
// unique pair already exists).
func (r *repository) AddAttendee(ctx context.Context, eventID, userID uint, totalSlots int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO event_attendees (event_id, user_id, registered_at)
		SELECT ?, ?, NOW()
		WHERE (SELECT COUNT(*) FROM event_attendees WHERE event_id = ?) < ?
		ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID, eventID, totalSlots)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) IsAttendee(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&EventAttendee{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountAttendees(ctx context.Context, eventID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&EventAttendee{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return int(count), err
}

func (r *repository) ListAttendees(ctx context.Context, eventID uint) ([]AttendeeInfo, error) {
	var attendees []AttendeeInfo
	err := r.db.WithContext(ctx).
		Table("event_attendees ea").
		Select("u.id, u.full_name, u.email, ea.registered_at").
		Joins("JOIN users u ON ea.user_id = u.id").
		Where("ea.event_id = ?", eventID).
		Order("ea.registered_at ASC").
		Scan(&attendees).Error
	return attendees, err
}
