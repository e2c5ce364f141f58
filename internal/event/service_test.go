package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/category"
)

// ---- fakes ----

type fakeRepo struct {
	events    map[uint]*Event
	attendees map[uint]map[uint]bool
	nextID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:    map[uint]*Event{},
		attendees: map[uint]map[uint]bool{},
		nextID:    1,
	}
}

func (f *fakeRepo) Create(_ context.Context, e *Event) error {
	e.ID = f.nextID
	f.nextID++
	stored := *e
	f.events[e.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uint) (*Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *e
	out.AttendeeCount = len(f.attendees[id])
	return &out, nil
}

func (f *fakeRepo) List(_ context.Context, filter EventFilter) ([]Event, error) {
	var out []Event
	for _, e := range f.events {
		if !filter.IncludePrivate && !e.IsPublic {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeRepo) GetByOrganizer(_ context.Context, organizerID uint) ([]Event, error) {
	var out []Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, e *Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *e
	f.events[e.ID] = &stored
	return nil
}

// Delete mirrors the transactional cascade: registrations go with the
// event.
func (f *fakeRepo) Delete(_ context.Context, id uint) error {
	delete(f.events, id)
	delete(f.attendees, id)
	return nil
}

// AddAttendee mirrors the conditional insert: no row when the seat map
// is full or the pair already exists.
func (f *fakeRepo) AddAttendee(_ context.Context, eventID, userID uint, totalSlots int) (bool, error) {
	seats := f.attendees[eventID]
	if seats == nil {
		seats = map[uint]bool{}
		f.attendees[eventID] = seats
	}
	if seats[userID] {
		return false, nil
	}
	if len(seats) >= totalSlots {
		return false, nil
	}
	seats[userID] = true
	return true, nil
}

func (f *fakeRepo) IsAttendee(_ context.Context, eventID, userID uint) (bool, error) {
	return f.attendees[eventID][userID], nil
}

func (f *fakeRepo) CountAttendees(_ context.Context, eventID uint) (int, error) {
	return len(f.attendees[eventID]), nil
}

func (f *fakeRepo) ListAttendees(_ context.Context, eventID uint) ([]AttendeeInfo, error) {
	var out []AttendeeInfo
	for userID := range f.attendees[eventID] {
		out = append(out, AttendeeInfo{ID: userID})
	}
	return out, nil
}

type fakeNotifier struct {
	attendeeCalls int
}

func (f *fakeNotifier) NotifyUser(context.Context, uint, string, string, string, *uint) error {
	return nil
}
func (f *fakeNotifier) NotifyRole(context.Context, string, string, string, string, *uint) error {
	return nil
}
func (f *fakeNotifier) NotifyAttendees(context.Context, uint, string, string, string) error {
	f.attendeeCalls++
	return nil
}

type fakeUsers struct {
	users map[uint]auth.User
}

func (f *fakeUsers) FindByID(userID uint) (auth.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return auth.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeCategories struct {
	known map[uint]bool
}

func (f *fakeCategories) GetByID(_ context.Context, id uint) (*category.Category, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &category.Category{ID: id, Name: "Concert"}, nil
}

type noopAudit struct{}

func (noopAudit) LogAction(context.Context, *uint, *uint, string, map[string]interface{}, string, string) error {
	return nil
}
func (noopAudit) GetAuditLogs(context.Context, auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}
func (noopAudit) GetAuditLogByID(context.Context, uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

// ---- helpers ----

func newTestService(approvedOrganizer bool) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	users := &fakeUsers{users: map[uint]auth.User{
		1: {ID: 1, FullName: "Organizer One", IsApproved: approvedOrganizer,
			Role: auth.UserRole{RoleName: "organizer"}},
		2: {ID: 2, FullName: "Attendee Two", Role: auth.UserRole{RoleName: "user"}},
		3: {ID: 3, FullName: "Attendee Three", Role: auth.UserRole{RoleName: "user"}},
		4: {ID: 4, FullName: "Attendee Four", Role: auth.UserRole{RoleName: "user"}},
	}}
	cats := &fakeCategories{known: map[uint]bool{10: true}}
	svc := NewService(repo, users, cats, noopAudit{})
	return svc, repo
}

func validCreateRequest() *CreateEventRequest {
	future := time.Now().AddDate(0, 1, 0)
	return &CreateEventRequest{
		EventName:            "Summer Concert",
		Description:          "Open air concert",
		Location:             "Chennai",
		EventDate:            future.Format("2006-01-02"),
		RegistrationDeadline: future.AddDate(0, 0, -7).Format("2006-01-02"),
		CategoryID:           10,
		TotalSlots:           2,
	}
}

func seedEvent(t *testing.T, svc *Service) *Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), 1, validCreateRequest(), "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return e
}

// ---- create ----

func TestCreateEventApprovedOrganizer(t *testing.T) {
	svc, repo := newTestService(true)

	e, err := svc.CreateEvent(context.Background(), 1, validCreateRequest(), "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if e.Status != StatusUpcoming {
		t.Errorf("status = %q, want %q", e.Status, StatusUpcoming)
	}
	if !e.IsPublic {
		t.Error("approved organizer's event must be publicly visible on creation")
	}
	if _, ok := repo.events[e.ID]; !ok {
		t.Error("event not persisted")
	}

	events, err := svc.ListEvents(context.Background(), EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("new event missing from public listing: %d results", len(events))
	}
}

func TestCreateEventUnapprovedOrganizerGoesPending(t *testing.T) {
	svc, repo := newTestService(false)

	e, err := svc.CreateEvent(context.Background(), 1, validCreateRequest(), "127.0.0.1")
	if !errors.Is(err, ErrAwaitingApproval) {
		t.Fatalf("err = %v, want ErrAwaitingApproval", err)
	}
	if e == nil {
		t.Fatal("pending submission must still return the stored event")
	}
	if e.Status != StatusPending {
		t.Errorf("status = %q, want %q", e.Status, StatusPending)
	}
	stored, ok := repo.events[e.ID]
	if !ok {
		t.Fatal("pending event not persisted")
	}
	if stored.Status != StatusPending {
		t.Errorf("persisted status = %q, want %q", stored.Status, StatusPending)
	}
	if stored.IsPublic {
		t.Error("pending event must stay private until an admin approves it")
	}
}

func TestCreateEventRejectsBadDates(t *testing.T) {
	svc, repo := newTestService(true)

	past := validCreateRequest()
	past.EventDate = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if _, err := svc.CreateEvent(context.Background(), 1, past, ""); !errors.Is(err, ErrEventDateNotFuture) {
		t.Errorf("past date: err = %v, want ErrEventDateNotFuture", err)
	}

	late := validCreateRequest()
	late.RegistrationDeadline = late.EventDate
	if _, err := svc.CreateEvent(context.Background(), 1, late, ""); !errors.Is(err, ErrDeadlineAfterEventDate) {
		t.Errorf("deadline on event day: err = %v, want ErrDeadlineAfterEventDate", err)
	}

	if len(repo.events) != 0 {
		t.Errorf("rejected events persisted: %d", len(repo.events))
	}
}

func TestCreateEventRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(true)

	req := validCreateRequest()
	req.CategoryID = 99
	if _, err := svc.CreateEvent(context.Background(), 1, req, ""); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestCreateEventUnknownOrganizer(t *testing.T) {
	svc, _ := newTestService(true)

	if _, err := svc.CreateEvent(context.Background(), 42, validCreateRequest(), ""); !errors.Is(err, ErrOrganizerNotFound) {
		t.Errorf("err = %v, want ErrOrganizerNotFound", err)
	}
}

// ---- listing ----

func TestListEventsHidesPrivateByDefault(t *testing.T) {
	svc, repo := newTestService(true)
	seedEvent(t, svc)

	repo.events[99] = &Event{ID: 99, EventName: "Draft", Status: StatusPending, IsPublic: false}

	events, err := svc.ListEvents(context.Background(), EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("listing = %d results, want only the public event", len(events))
	}
	if events[0].EventName == "Draft" {
		t.Error("pending event leaked into the public listing")
	}
}

// ---- update ----

func TestUpdateEventOwnership(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc)

	stranger := auth.User{ID: 9, Role: auth.UserRole{RoleName: "organizer"}}
	name := "Hijacked"
	if _, err := svc.UpdateEvent(context.Background(), e.ID, &UpdateEventRequest{EventName: &name}, stranger, ""); !errors.Is(err, ErrNotOwner) {
		t.Errorf("stranger update: err = %v, want ErrNotOwner", err)
	}

	admin := auth.User{ID: 9, Role: auth.UserRole{RoleName: "admin"}}
	updated, err := svc.UpdateEvent(context.Background(), e.ID, &UpdateEventRequest{EventName: &name}, admin, "")
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.EventName != "Hijacked" {
		t.Errorf("event name = %q, want %q", updated.EventName, "Hijacked")
	}
}

func TestUpdateEventRevalidatesMergedDates(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc)
	owner := auth.User{ID: 1, Role: auth.UserRole{RoleName: "organizer"}}

	// Moving the event date before the existing deadline must fail even
	// though the new date itself is in the future.
	newDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	_, err := svc.UpdateEvent(context.Background(), e.ID, &UpdateEventRequest{EventDate: &newDate}, owner, "")
	if !errors.Is(err, ErrDeadlineAfterEventDate) {
		t.Errorf("err = %v, want ErrDeadlineAfterEventDate", err)
	}
}

func TestUpdateEventRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc)
	owner := auth.User{ID: 1, Role: auth.UserRole{RoleName: "organizer"}}

	badCat := uint(99)
	if _, err := svc.UpdateEvent(context.Background(), e.ID, &UpdateEventRequest{CategoryID: &badCat}, owner, ""); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestUpdateEventKeepsSlotsAtOrAboveAttendees(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc)
	owner := auth.User{ID: 1, Role: auth.UserRole{RoleName: "organizer"}}

	for _, userID := range []uint{2, 3} {
		if err := svc.RegisterAttendee(context.Background(), e.ID, userID, false, ""); err != nil {
			t.Fatalf("register user %d: %v", userID, err)
		}
	}

	one := 1
	if _, err := svc.UpdateEvent(context.Background(), e.ID, &UpdateEventRequest{TotalSlots: &one}, owner, ""); !errors.Is(err, ErrSlotsBelowAttendees) {
		t.Errorf("shrink below attendees: err = %v, want ErrSlotsBelowAttendees", err)
	}

	three := 3
	updated, err := svc.UpdateEvent(context.Background(), e.ID, &UpdateEventRequest{TotalSlots: &three}, owner, "")
	if err != nil {
		t.Fatalf("grow slots: %v", err)
	}
	if updated.TotalSlots != 3 {
		t.Errorf("total slots = %d, want 3", updated.TotalSlots)
	}
}

// ---- delete ----

func TestDeleteEventStatusGate(t *testing.T) {
	svc, repo := newTestService(true)
	e := seedEvent(t, svc)
	owner := auth.User{ID: 1, Role: auth.UserRole{RoleName: "organizer"}}

	repo.events[e.ID].Status = StatusOngoing
	if err := svc.DeleteEvent(context.Background(), e.ID, owner, ""); !errors.Is(err, ErrCannotDelete) {
		t.Errorf("ongoing delete: err = %v, want ErrCannotDelete", err)
	}

	repo.events[e.ID].Status = StatusUpcoming
	if err := svc.DeleteEvent(context.Background(), e.ID, owner, ""); err != nil {
		t.Fatalf("upcoming delete: %v", err)
	}
	if _, ok := repo.events[e.ID]; ok {
		t.Error("event still present after delete")
	}
}

func TestDeleteEventOwnership(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc)

	stranger := auth.User{ID: 9, Role: auth.UserRole{RoleName: "organizer"}}
	if err := svc.DeleteEvent(context.Background(), e.ID, stranger, ""); !errors.Is(err, ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
}

func TestDeleteEventNotifiesAttendeesOnceAndFreesSeats(t *testing.T) {
	svc, repo := newTestService(true)
	notifier := &fakeNotifier{}
	svc.NotifSvc = notifier
	e := seedEvent(t, svc)
	owner := auth.User{ID: 1, Role: auth.UserRole{RoleName: "organizer"}}

	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, false, ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.DeleteEvent(context.Background(), e.ID, owner, ""); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if notifier.attendeeCalls != 1 {
		t.Errorf("attendee fan-out ran %d times, want exactly once", notifier.attendeeCalls)
	}
	if _, ok := repo.attendees[e.ID]; ok {
		t.Error("registrations survived the event delete")
	}
}

// ---- registration ----

func TestRegisterAttendeeCapacity(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc) // TotalSlots = 2

	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, false, ""); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := svc.RegisterAttendee(context.Background(), e.ID, 3, false, ""); err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if err := svc.RegisterAttendee(context.Background(), e.ID, 4, false, ""); !errors.Is(err, ErrEventFull) {
		t.Errorf("over capacity: err = %v, want ErrEventFull", err)
	}
}

func TestRegisterAttendeeDuplicate(t *testing.T) {
	svc, _ := newTestService(true)
	e := seedEvent(t, svc)

	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, false, ""); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, false, ""); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate: err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterAttendeeDeadlinePassed(t *testing.T) {
	svc, repo := newTestService(true)
	e := seedEvent(t, svc)
	repo.events[e.ID].RegistrationDeadline = time.Now().AddDate(0, 0, -1)

	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, false, ""); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("err = %v, want ErrRegistrationClosed", err)
	}
}

func TestRegisterAttendeePaidEvent(t *testing.T) {
	svc, repo := newTestService(true)
	e := seedEvent(t, svc)
	repo.events[e.ID].Price = 250

	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, false, ""); !errors.Is(err, ErrPaymentRequired) {
		t.Errorf("unpaid: err = %v, want ErrPaymentRequired", err)
	}
	if err := svc.RegisterAttendee(context.Background(), e.ID, 2, true, ""); err != nil {
		t.Errorf("paid: %v", err)
	}
}

func TestRegisterAttendeeUnknownEvent(t *testing.T) {
	svc, _ := newTestService(true)

	if err := svc.RegisterAttendee(context.Background(), 404, 2, false, ""); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("err = %v, want ErrEventNotFound", err)
	}
}
