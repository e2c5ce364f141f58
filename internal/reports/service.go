package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
)

var ErrNotEventOwner = errors.New("cannot export another organizer's event")

// EventLookup fetches the event being exported.
type EventLookup interface {
	GetEventByID(ctx context.Context, id uint) (*event.Event, error)
}

// ReportService coordinates repo + exporter.
type ReportService interface {
	ExportAttendees(ctx context.Context, eventID uint, format string, actorID uint, isAdmin bool, ip string) ([]byte, string, string, error)
	ExportEventSummary(ctx context.Context, req EventSummaryRequest, format string, actorID uint, ip string) ([]byte, string, string, error)
}

type reportService struct {
	repo     ReportRepository
	events   EventLookup
	exporter ReportExporter
	auditSvc auditlog.Service
}

func NewReportService(repo ReportRepository, events EventLookup, exporter ReportExporter, auditSvc auditlog.Service) ReportService {
	return &reportService{
		repo:     repo,
		events:   events,
		exporter: exporter,
		auditSvc: auditSvc,
	}
}

// ExportAttendees renders the attendee list of one event. Organizers may
// only export their own events; admins may export any.
func (s *reportService) ExportAttendees(ctx context.Context, eventID uint, format string, actorID uint, isAdmin bool, ip string) ([]byte, string, string, error) {
	ev, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, "", "", err
	}

	if !isAdmin && ev.OrganizerID != actorID {
		s.auditSvc.LogAction(ctx, &actorID, &eventID, "REPORT_EXPORTED", map[string]interface{}{
			"report": "attendees",
			"reason": "not event owner",
		}, ip, "failure")
		return nil, "", "", ErrNotEventOwner
	}

	rows, err := s.repo.GetAttendeesForEvent(ctx, eventID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to fetch attendees: %w", err)
	}

	data, filename, mime, err := s.exporter.ExportAttendees(format, ev.EventName, rows)
	if err != nil {
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, &actorID, &eventID, "REPORT_EXPORTED", map[string]interface{}{
		"report": "attendees",
		"format": format,
		"rows":   len(rows),
	}, ip, "success")

	return data, filename, mime, nil
}

// ExportEventSummary renders the event summary report for admins.
func (s *reportService) ExportEventSummary(ctx context.Context, req EventSummaryRequest, format string, actorID uint, ip string) ([]byte, string, string, error) {
	rows, err := s.repo.GetEventSummary(ctx, req)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to fetch event summary: %w", err)
	}

	data, filename, mime, err := s.exporter.ExportEventSummary(format, rows)
	if err != nil {
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, &actorID, nil, "REPORT_EXPORTED", map[string]interface{}{
		"report": "event_summary",
		"format": format,
		"rows":   len(rows),
	}, ip, "success")

	return data, filename, mime, nil
}
