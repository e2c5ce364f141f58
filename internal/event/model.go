package event

import (
	"time"

	"gorm.io/datatypes"

	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/category"
)

// Event status values
const (
	StatusPending   = "pending"
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// ValidStatuses is the closed set of event statuses
var ValidStatuses = map[string]bool{
	StatusPending:   true,
	StatusUpcoming:  true,
	StatusOngoing:   true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusApproved:  true,
	StatusRejected:  true,
}

// Event represents the events table
type Event struct {
	ID                   uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	EventName            string            `gorm:"size:255;not null" json:"event_name"`
	Description          string            `gorm:"type:text;not null" json:"description"`
	Location             string            `gorm:"size:255;not null;index" json:"location"`
	EventDate            time.Time         `gorm:"not null;index" json:"event_date"`
	EventTime            string            `gorm:"size:10" json:"time"`
	RegistrationDeadline time.Time         `gorm:"not null" json:"registration_deadline"`
	Price                float64           `gorm:"not null;default:0" json:"price"`
	CategoryID           uint              `gorm:"not null;index" json:"category_id"`
	Category             category.Category `gorm:"foreignKey:CategoryID;references:ID" json:"category"`
	OrganizerID          uint              `gorm:"not null;index" json:"organizer_id"`
	Organizer            auth.User         `gorm:"foreignKey:OrganizerID;references:ID" json:"organizer"`
	TotalSlots           int               `gorm:"not null" json:"total_slots"`
	Tags                 datatypes.JSON    `gorm:"type:jsonb" json:"tags"`
	Image                string            `gorm:"type:text" json:"image"`
	IsPublic             bool              `gorm:"default:false" json:"is_public"`
	Status               string            `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`

	AttendeeCount int            `gorm:"-" json:"attendee_count"`
	Attendees     []AttendeeInfo `gorm:"-" json:"attendees,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

// EventAttendee is the registration join table.
// The unique (event_id, user_id) pair rejects duplicate registrations;
// RegisteredAt preserves registration order.
type EventAttendee struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID      uint      `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_event_user" json:"user_id"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}

func (EventAttendee) TableName() string {
	return "event_attendees"
}

// AttendeeInfo is the display shape of a registered attendee
type AttendeeInfo struct {
	ID           uint      `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CreateEventRequest carries the organizer-supplied event fields
type CreateEventRequest struct {
	EventName            string   `json:"event_name" binding:"required"`
	Description          string   `json:"description" binding:"required"`
	Location             string   `json:"location" binding:"required"`
	EventDate            string   `json:"event_date" binding:"required"` // "2006-01-02"
	EventTime            string   `json:"time"`                          // "15:04"
	RegistrationDeadline string   `json:"registration_deadline" binding:"required"`
	Price                float64  `json:"price"`
	CategoryID           uint     `json:"category_id" binding:"required"`
	TotalSlots           int      `json:"total_slots" binding:"required"`
	Tags                 []string `json:"tags"`
	Image                string   `json:"image"`
	Status               string   `json:"status"` // optional, approved organizers only
}

// UpdateEventRequest carries a partial update; nil fields are left unchanged
type UpdateEventRequest struct {
	EventName            *string   `json:"event_name"`
	Description          *string   `json:"description"`
	Location             *string   `json:"location"`
	EventDate            *string   `json:"event_date"`
	EventTime            *string   `json:"time"`
	RegistrationDeadline *string   `json:"registration_deadline"`
	Price                *float64  `json:"price"`
	CategoryID           *uint     `json:"category_id"`
	TotalSlots           *int      `json:"total_slots"`
	Tags                 *[]string `json:"tags"`
	Image                *string   `json:"image"`
	Status               *string   `json:"status"`
}

// EventFilter carries the public listing filters
type EventFilter struct {
	Search         string
	Location       string
	CategoryID     *uint
	Status         string
	PriceMin       *float64
	PriceMax       *float64
	Date           *time.Time // single-day window
	IncludePrivate bool
}
