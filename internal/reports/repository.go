package reports

import (
	"context"

	"gorm.io/gorm"
)

type ReportRepository interface {
	GetAttendeesForEvent(ctx context.Context, eventID uint) ([]AttendeeReportRow, error)
	GetEventOrganizerID(ctx context.Context, eventID uint) (uint, error)
	GetEventSummary(ctx context.Context, req EventSummaryRequest) ([]EventSummaryRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetAttendeesForEvent(ctx context.Context, eventID uint) ([]AttendeeReportRow, error) {
	var rows []AttendeeReportRow
	err := r.db.WithContext(ctx).
		Table("event_attendees ea").
		Select("u.id AS user_id, u.full_name, u.email, u.phone, ea.registered_at").
		Joins("JOIN users u ON u.id = ea.user_id").
		Where("ea.event_id = ?", eventID).
		Order("ea.registered_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) GetEventOrganizerID(ctx context.Context, eventID uint) (uint, error) {
	var organizerID uint
	err := r.db.WithContext(ctx).
		Table("events").
		Select("organizer_id").
		Where("id = ?", eventID).
		Take(&organizerID).Error
	return organizerID, err
}

func (r *reportRepository) GetEventSummary(ctx context.Context, req EventSummaryRequest) ([]EventSummaryRow, error) {
	q := r.db.WithContext(ctx).
		Table("events e").
		Select(`e.id AS event_id, e.event_name, c.name AS category_name,
			u.full_name AS organizer_name, e.location, e.event_date, e.status,
			e.price, e.total_slots,
			(SELECT COUNT(*) FROM event_attendees ea WHERE ea.event_id = e.id) AS attendee_count`).
		Joins("JOIN categories c ON c.id = e.category_id").
		Joins("JOIN users u ON u.id = e.organizer_id")

	if req.Status != "" {
		q = q.Where("e.status = ?", req.Status)
	}
	if req.CategoryID != 0 {
		q = q.Where("e.category_id = ?", req.CategoryID)
	}
	if req.OrganizerID != 0 {
		q = q.Where("e.organizer_id = ?", req.OrganizerID)
	}
	if req.FromDate != nil {
		q = q.Where("e.event_date >= ?", *req.FromDate)
	}
	if req.ToDate != nil {
		q = q.Where("e.event_date <= ?", *req.ToDate)
	}

	var rows []EventSummaryRow
	err := q.Order("e.event_date ASC").Scan(&rows).Error
	return rows, err
}
