package admin

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
)

// ---- fakes ----

type fakeAdminRepo struct {
	events      map[uint]*event.Event
	users       map[uint]*auth.User
	roles       map[uint]*auth.UserRole
	permissions map[uint]*auth.Permission
	grants      map[[2]uint]bool

	organizerFlagErr error
	approvedUsers    map[uint]bool
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{
		events:        map[uint]*event.Event{},
		users:         map[uint]*auth.User{},
		roles:         map[uint]*auth.UserRole{},
		permissions:   map[uint]*auth.Permission{},
		grants:        map[[2]uint]bool{},
		approvedUsers: map[uint]bool{},
	}
}

func (f *fakeAdminRepo) GetPendingEvents(_ context.Context) ([]event.Event, error) {
	var out []event.Event
	for _, e := range f.events {
		if e.Status == event.StatusPending {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeAdminRepo) GetEventByID(_ context.Context, id uint) (*event.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *e
	return &out, nil
}

func (f *fakeAdminRepo) ApplyEventDecision(_ context.Context, eventID uint, status string, isPublic bool) error {
	e, ok := f.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	e.IsPublic = isPublic
	return nil
}

func (f *fakeAdminRepo) SetOrganizerApproved(_ context.Context, userID uint) error {
	if f.organizerFlagErr != nil {
		return f.organizerFlagErr
	}
	f.approvedUsers[userID] = true
	if u, ok := f.users[userID]; ok {
		u.IsApproved = true
	}
	return nil
}

func (f *fakeAdminRepo) ListUsers(_ context.Context, _, _ string) ([]auth.User, error) {
	var out []auth.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeAdminRepo) GetUserByID(_ context.Context, id uint) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeAdminRepo) UpdateUserStatus(_ context.Context, id uint, status string) error {
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeAdminRepo) UpdateUserPassword(_ context.Context, id uint, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeAdminRepo) DeleteUser(_ context.Context, id uint) error {
	delete(f.users, id)
	return nil
}

func (f *fakeAdminRepo) CreatePermission(_ context.Context, p *auth.Permission) error {
	p.ID = uint(len(f.permissions) + 1)
	f.permissions[p.ID] = p
	return nil
}

func (f *fakeAdminRepo) ListPermissions(_ context.Context) ([]auth.Permission, error) {
	var out []auth.Permission
	for _, p := range f.permissions {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeAdminRepo) GetPermissionByID(_ context.Context, id uint) (*auth.Permission, error) {
	p, ok := f.permissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeAdminRepo) GetPermissionByName(_ context.Context, name string) (*auth.Permission, error) {
	for _, p := range f.permissions {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAdminRepo) DeletePermission(_ context.Context, id uint) error {
	delete(f.permissions, id)
	return nil
}

func (f *fakeAdminRepo) DeleteGrantsForPermission(_ context.Context, permissionID uint) (int64, error) {
	var removed int64
	for key := range f.grants {
		if key[1] == permissionID {
			delete(f.grants, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeAdminRepo) CreateGrant(_ context.Context, g *auth.RolePermission) error {
	f.grants[[2]uint{g.RoleID, g.PermissionID}] = true
	return nil
}

func (f *fakeAdminRepo) GrantExists(_ context.Context, roleID, permissionID uint) (bool, error) {
	return f.grants[[2]uint{roleID, permissionID}], nil
}

func (f *fakeAdminRepo) DeleteGrant(_ context.Context, roleID, permissionID uint) error {
	delete(f.grants, [2]uint{roleID, permissionID})
	return nil
}

func (f *fakeAdminRepo) ListGrantsByRole(_ context.Context, roleID uint) ([]auth.Permission, error) {
	var out []auth.Permission
	for key := range f.grants {
		if key[0] == roleID {
			if p, ok := f.permissions[key[1]]; ok {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (f *fakeAdminRepo) FindRoleByID(_ context.Context, id uint) (*auth.UserRole, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
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

func newTestService() (Service, *fakeAdminRepo) {
	repo := newFakeAdminRepo()
	repo.users[1] = &auth.User{ID: 1, FullName: "Admin", Role: auth.UserRole{RoleName: "admin"}, Status: "active"}
	repo.users[2] = &auth.User{ID: 2, FullName: "Organizer", Role: auth.UserRole{RoleName: "organizer"}, Status: "active"}
	repo.events[10] = &event.Event{ID: 10, EventName: "Summer Concert", OrganizerID: 2, Status: event.StatusPending}
	repo.roles[5] = &auth.UserRole{ID: 5, RoleName: "organizer"}
	return NewService(repo, noopAudit{}), repo
}

// ---- approval workflow ----

func TestDecideEventApprove(t *testing.T) {
	svc, repo := newTestService()

	result, err := svc.DecideEvent(context.Background(), 10, "approved", 1, "127.0.0.1")
	if err != nil {
		t.Fatalf("DecideEvent: %v", err)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %q", result.Warning)
	}
	if result.Event.Status != event.StatusApproved {
		t.Errorf("status = %q, want %q", result.Event.Status, event.StatusApproved)
	}
	if !repo.events[10].IsPublic {
		t.Error("approved event must become public")
	}
	if !repo.approvedUsers[2] {
		t.Error("approval must flip the organizer's flag")
	}
}

func TestDecideEventReject(t *testing.T) {
	svc, repo := newTestService()

	result, err := svc.DecideEvent(context.Background(), 10, "rejected", 1, "")
	if err != nil {
		t.Fatalf("DecideEvent: %v", err)
	}
	if result.Event.Status != event.StatusRejected {
		t.Errorf("status = %q, want %q", result.Event.Status, event.StatusRejected)
	}
	if repo.events[10].IsPublic {
		t.Error("rejected event must not become public")
	}
	if repo.approvedUsers[2] {
		t.Error("rejection must not touch the organizer's flag")
	}
}

func TestDecideEventRequiresExactLiterals(t *testing.T) {
	svc, repo := newTestService()

	for _, decision := range []string{"Approved", "APPROVED", " approved", "approved ", "Rejected"} {
		if _, err := svc.DecideEvent(context.Background(), 10, decision, 1, ""); !errors.Is(err, ErrInvalidDecision) {
			t.Errorf("decision %q: err = %v, want ErrInvalidDecision", decision, err)
		}
	}
	if repo.events[10].Status != event.StatusPending {
		t.Errorf("event status = %q, must stay pending after rejected literals", repo.events[10].Status)
	}
}

func TestDecideEventInvalidDecision(t *testing.T) {
	svc, _ := newTestService()

	for _, decision := range []string{"", "maybe", "pending", "cancelled"} {
		if _, err := svc.DecideEvent(context.Background(), 10, decision, 1, ""); !errors.Is(err, ErrInvalidDecision) {
			t.Errorf("decision %q: err = %v, want ErrInvalidDecision", decision, err)
		}
	}
}

func TestDecideEventAlreadyDecided(t *testing.T) {
	svc, repo := newTestService()

	for _, status := range []string{event.StatusApproved, event.StatusRejected} {
		repo.events[10].Status = status
		if _, err := svc.DecideEvent(context.Background(), 10, "approved", 1, ""); !errors.Is(err, ErrAlreadyDecided) {
			t.Errorf("status %q: err = %v, want ErrAlreadyDecided", status, err)
		}
	}
}

func TestDecideEventNotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.DecideEvent(context.Background(), 404, "approved", 1, ""); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("err = %v, want ErrEventNotFound", err)
	}
}

func TestDecideEventOrganizerFlagFailureIsWarning(t *testing.T) {
	svc, repo := newTestService()
	repo.organizerFlagErr = errors.New("db down")

	result, err := svc.DecideEvent(context.Background(), 10, "approved", 1, "")
	if err != nil {
		t.Fatalf("flag failure must not fail the decision: %v", err)
	}
	if result.Warning == "" {
		t.Error("expected a warning when the organizer flag update fails")
	}
	if repo.events[10].Status != event.StatusApproved {
		t.Errorf("status = %q, the committed decision must stand", repo.events[10].Status)
	}
}

// ---- user management ----

func TestDeleteUserGuards(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.DeleteUser(context.Background(), 1, 1, ""); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Errorf("self delete: err = %v, want ErrCannotDeleteSelf", err)
	}
	if err := svc.DeleteUser(context.Background(), 1, 2, ""); !errors.Is(err, ErrCannotDeleteAdmin) {
		t.Errorf("admin delete: err = %v, want ErrCannotDeleteAdmin", err)
	}
	if err := svc.DeleteUser(context.Background(), 404, 1, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: err = %v, want ErrUserNotFound", err)
	}
	if err := svc.DeleteUser(context.Background(), 2, 1, ""); err != nil {
		t.Errorf("organizer delete: %v", err)
	}
}

func TestResetUserPassword(t *testing.T) {
	svc, repo := newTestService()
	repo.users[2].PasswordHash = "old-hash"

	temp, err := svc.ResetUserPassword(context.Background(), 2, 1, "127.0.0.1")
	if err != nil {
		t.Fatalf("ResetUserPassword: %v", err)
	}
	if temp == "" {
		t.Fatal("no temporary password issued")
	}
	if repo.users[2].PasswordHash == "old-hash" {
		t.Error("stored hash unchanged")
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.users[2].PasswordHash), []byte(temp)) != nil {
		t.Error("stored hash does not match the issued temporary password")
	}

	if _, err := svc.ResetUserPassword(context.Background(), 404, 1, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: err = %v, want ErrUserNotFound", err)
	}
}

// ---- permissions ----

func TestCreatePermissionDuplicate(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.CreatePermission(context.Background(), "event:approve", "", 1, ""); err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}
	if _, err := svc.CreatePermission(context.Background(), "event:approve", "", 1, ""); !errors.Is(err, ErrPermissionExists) {
		t.Errorf("duplicate: err = %v, want ErrPermissionExists", err)
	}
}

func TestDeletePermissionCascadesGrants(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.CreatePermission(context.Background(), "event:approve", "", 1, "")
	if err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}
	if err := svc.GrantPermission(context.Background(), 5, p.ID, 1, ""); err != nil {
		t.Fatalf("GrantPermission: %v", err)
	}

	if err := svc.DeletePermission(context.Background(), p.ID, 1, ""); err != nil {
		t.Fatalf("DeletePermission: %v", err)
	}
	if len(repo.grants) != 0 {
		t.Errorf("orphaned grants left behind: %d", len(repo.grants))
	}
	if _, ok := repo.permissions[p.ID]; ok {
		t.Error("permission still present after delete")
	}
}

func TestDeletePermissionNotFound(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.DeletePermission(context.Background(), 404, 1, ""); !errors.Is(err, ErrPermissionNotFound) {
		t.Errorf("err = %v, want ErrPermissionNotFound", err)
	}
}

func TestGrantPermissionValidation(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.CreatePermission(context.Background(), "user:manage", "", 1, "")
	if err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}

	if err := svc.GrantPermission(context.Background(), 99, p.ID, 1, ""); !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("unknown role: err = %v, want ErrRoleNotFound", err)
	}
	if err := svc.GrantPermission(context.Background(), 5, 404, 1, ""); !errors.Is(err, ErrPermissionNotFound) {
		t.Errorf("unknown permission: err = %v, want ErrPermissionNotFound", err)
	}

	if err := svc.GrantPermission(context.Background(), 5, p.ID, 1, ""); err != nil {
		t.Fatalf("GrantPermission: %v", err)
	}
	if err := svc.GrantPermission(context.Background(), 5, p.ID, 1, ""); !errors.Is(err, ErrGrantExists) {
		t.Errorf("duplicate grant: err = %v, want ErrGrantExists", err)
	}
}

func TestRevokePermission(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.CreatePermission(context.Background(), "report:export", "", 1, "")
	if err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}
	if err := svc.GrantPermission(context.Background(), 5, p.ID, 1, ""); err != nil {
		t.Fatalf("GrantPermission: %v", err)
	}

	if err := svc.RevokePermission(context.Background(), 5, p.ID, 1, ""); err != nil {
		t.Fatalf("RevokePermission: %v", err)
	}
	if len(repo.grants) != 0 {
		t.Error("grant still present after revoke")
	}
	if err := svc.RevokePermission(context.Background(), 5, p.ID, 1, ""); !errors.Is(err, ErrPermissionNotFound) {
		t.Errorf("double revoke: err = %v, want ErrPermissionNotFound", err)
	}
}

func TestListPendingEvents(t *testing.T) {
	svc, repo := newTestService()
	repo.events[11] = &event.Event{ID: 11, EventName: "Approved One", Status: event.StatusApproved}

	pending, err := svc.ListPendingEvents(context.Background())
	if err != nil {
		t.Fatalf("ListPendingEvents: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].ID != 10 {
		t.Errorf("pending event ID = %d, want 10", pending[0].ID)
	}
}
