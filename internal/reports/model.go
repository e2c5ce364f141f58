package reports

import "time"

// Supported export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// AttendeeReportRow is one registered attendee of an event.
type AttendeeReportRow struct {
	UserID       uint      `json:"user_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	RegisteredAt time.Time `json:"registered_at"`
}

// EventSummaryRow is one event with its registration figures.
type EventSummaryRow struct {
	EventID       uint      `json:"event_id"`
	EventName     string    `json:"event_name"`
	CategoryName  string    `json:"category_name"`
	OrganizerName string    `json:"organizer_name"`
	Location      string    `json:"location"`
	EventDate     time.Time `json:"event_date"`
	Status        string    `json:"status"`
	Price         float64   `json:"price"`
	TotalSlots    int       `json:"total_slots"`
	AttendeeCount int       `json:"attendee_count"`
}

// EventSummaryRequest filters the event summary report.
type EventSummaryRequest struct {
	Status      string
	CategoryID  uint
	OrganizerID uint
	FromDate    *time.Time
	ToDate      *time.Time
}
