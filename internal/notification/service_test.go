package notification

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

// ---- fakes ----

type fakeNotifRepo struct {
	organizers map[uint]uint   // eventID -> organizerID
	attendees  map[uint][]uint // eventID -> userIDs
	emails     map[uint]string // userID -> email

	logs []*NotificationLog
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{
		organizers: map[uint]uint{},
		attendees:  map[uint][]uint{},
		emails:     map[uint]string{},
	}
}

func (f *fakeNotifRepo) CreateInApp(_ context.Context, n *InAppNotification) error { return nil }
func (f *fakeNotifRepo) ListInAppByUser(_ context.Context, _ uint, _ bool, _ int) ([]InAppNotification, error) {
	return nil, nil
}
func (f *fakeNotifRepo) MarkAsRead(_ context.Context, _, _ uint) error { return nil }
func (f *fakeNotifRepo) MarkAllAsRead(_ context.Context, _ uint) error { return nil }
func (f *fakeNotifRepo) CountUnread(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

func (f *fakeNotifRepo) CreateLog(_ context.Context, log *NotificationLog) error {
	log.ID = uint(len(f.logs) + 1)
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeNotifRepo) UpdateLog(_ context.Context, _ *NotificationLog) error { return nil }

func (f *fakeNotifRepo) GetUserIDsByRole(_ context.Context, _ string) ([]uint, error) {
	return nil, nil
}

func (f *fakeNotifRepo) GetAttendeeUserIDs(_ context.Context, eventID uint) ([]uint, error) {
	return f.attendees[eventID], nil
}

func (f *fakeNotifRepo) GetAttendeeEmails(_ context.Context, eventID uint) ([]string, error) {
	var out []string
	for _, userID := range f.attendees[eventID] {
		out = append(out, f.emails[userID])
	}
	return out, nil
}

func (f *fakeNotifRepo) GetEventOrganizerID(_ context.Context, eventID uint) (uint, error) {
	organizerID, ok := f.organizers[eventID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return organizerID, nil
}

func (f *fakeNotifRepo) UpsertDeviceToken(_ context.Context, _ *FCMDeviceToken) error { return nil }
func (f *fakeNotifRepo) DeactivateDeviceToken(_ context.Context, _ uint, _ string) error {
	return nil
}
func (f *fakeNotifRepo) GetActiveDeviceTokens(_ context.Context, _ uint) ([]string, error) {
	return nil, nil
}

// ---- tests ----

func newEmailTestService() (Service, *fakeNotifRepo) {
	repo := newFakeNotifRepo()
	repo.organizers[10] = 2
	repo.attendees[10] = []uint{3, 4}
	repo.emails[3] = "three@example.com"
	repo.emails[4] = "four@example.com"
	return NewService(repo), repo
}

func TestEmailEventAttendeesOwnership(t *testing.T) {
	svc, _ := newEmailTestService()

	err := svc.EmailEventAttendees(context.Background(), 10, 9, false, "Venue change", "New hall")
	if !errors.Is(err, ErrNotEventOwner) {
		t.Errorf("stranger send: err = %v, want ErrNotEventOwner", err)
	}

	// Admins may email any event's attendees.
	if err := svc.EmailEventAttendees(context.Background(), 10, 9, true, "Venue change", "New hall"); err != nil {
		t.Errorf("admin send: %v", err)
	}
}

func TestEmailEventAttendeesRecordsLog(t *testing.T) {
	svc, repo := newEmailTestService()

	if err := svc.EmailEventAttendees(context.Background(), 10, 2, false, "Venue change", "New hall"); err != nil {
		t.Fatalf("EmailEventAttendees: %v", err)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("logged %d sends, want 1", len(repo.logs))
	}
	entry := repo.logs[0]
	if entry.Channel != "email" {
		t.Errorf("channel = %q, want email", entry.Channel)
	}
	if entry.EventID == nil || *entry.EventID != 10 {
		t.Error("log entry missing the event reference")
	}
}

func TestEmailEventAttendeesEdgeCases(t *testing.T) {
	svc, repo := newEmailTestService()

	err := svc.EmailEventAttendees(context.Background(), 99, 2, false, "Hello", "World")
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: err = %v, want ErrEventNotFound", err)
	}

	repo.organizers[11] = 2
	err = svc.EmailEventAttendees(context.Background(), 11, 2, false, "Hello", "World")
	if !errors.Is(err, ErrNoAttendees) {
		t.Errorf("empty event: err = %v, want ErrNoAttendees", err)
	}
}
