package admin

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
	"github.com/karthikeyan-cs/event-management-backend/utils"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrInvalidDecision    = errors.New("decision must be approved or rejected")
	ErrAlreadyDecided     = errors.New("event has already been decided")
	ErrUserNotFound       = errors.New("user not found")
	ErrCannotDeleteAdmin  = errors.New("admin accounts cannot be deleted")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrPermissionExists   = errors.New("permission already exists")
	ErrGrantExists        = errors.New("role already has this permission")
	ErrRoleNotFound       = errors.New("role not found")
)

// DecisionResult reports the outcome of an approval decision. Warning is
// set when the secondary organizer-flag update failed; the status change
// itself has already been committed.
type DecisionResult struct {
	Event   *event.Event `json:"event"`
	Warning string       `json:"warning,omitempty"`
}

type Service interface {
	ListPendingEvents(ctx context.Context) ([]event.Event, error)
	DecideEvent(ctx context.Context, eventID uint, decision string, adminID uint, ip string) (*DecisionResult, error)

	ListUsers(ctx context.Context, role, search string) ([]auth.User, error)
	GetUser(ctx context.Context, id uint) (*auth.User, error)
	UpdateUserStatus(ctx context.Context, id uint, status string, adminID uint, ip string) error
	ResetUserPassword(ctx context.Context, id uint, adminID uint, ip string) (string, error)
	DeleteUser(ctx context.Context, id uint, adminID uint, ip string) error

	CreatePermission(ctx context.Context, name, description string, adminID uint, ip string) (*auth.Permission, error)
	ListPermissions(ctx context.Context) ([]auth.Permission, error)
	DeletePermission(ctx context.Context, id uint, adminID uint, ip string) error

	GrantPermission(ctx context.Context, roleID, permissionID uint, adminID uint, ip string) error
	RevokePermission(ctx context.Context, roleID, permissionID uint, adminID uint, ip string) error
	ListRolePermissions(ctx context.Context, roleID uint) ([]auth.Permission, error)
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

// =============================
// Approval workflow
// =============================

func (s *service) ListPendingEvents(ctx context.Context) ([]event.Event, error) {
	events, err := s.repo.GetPendingEvents(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []event.Event{}
	}
	return events, nil
}

// DecideEvent applies an approve/reject decision. Approval flips the
// organizer's global IsApproved flag; rejection never revokes it. The
// flag update is best-effort after the committed status change.
// Only the exact literals "approved" and "rejected" are accepted.
func (s *service) DecideEvent(ctx context.Context, eventID uint, decision string, adminID uint, ip string) (*DecisionResult, error) {
	if decision != event.StatusApproved && decision != event.StatusRejected {
		return nil, ErrInvalidDecision
	}

	e, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if e.Status == event.StatusApproved || e.Status == event.StatusRejected {
		return nil, ErrAlreadyDecided
	}

	isPublic := decision == event.StatusApproved
	if err := s.repo.ApplyEventDecision(ctx, eventID, decision, isPublic); err != nil {
		s.auditSvc.LogAction(ctx, &adminID, &eventID, "EVENT_DECIDED", map[string]interface{}{
			"decision": decision, "error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	result := &DecisionResult{}

	if decision == event.StatusApproved {
		if err := s.repo.SetOrganizerApproved(ctx, e.OrganizerID); err != nil {
			log.Printf("⚠️ organizer %d approval flag update failed: %v", e.OrganizerID, err)
			result.Warning = "event approved but organizer flag update failed"
		}
	}

	s.auditSvc.LogAction(ctx, &adminID, &eventID, "EVENT_DECIDED", map[string]interface{}{
		"event_name": e.EventName,
		"decision":   decision,
		"organizer":  e.OrganizerID,
	}, ip, "success")

	msgType := "event_approved"
	message := e.EventName + " has been approved"
	if decision == event.StatusRejected {
		msgType = "event_rejected"
		message = e.EventName + " has been rejected"
	}
	utils.PublishNotification(utils.NotificationMessage{
		Type:      msgType,
		ForRole:   "organizer",
		UserID:    e.OrganizerID,
		EventID:   e.ID,
		EventName: e.EventName,
		Message:   message,
	})

	decided, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		decided = e
	}
	result.Event = decided

	return result, nil
}

// =============================
// User management
// =============================

func (s *service) ListUsers(ctx context.Context, role, search string) ([]auth.User, error) {
	return s.repo.ListUsers(ctx, role, search)
}

func (s *service) GetUser(ctx context.Context, id uint) (*auth.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *service) UpdateUserStatus(ctx context.Context, id uint, status string, adminID uint, ip string) error {
	if status != "active" && status != "inactive" {
		return errors.New("status must be active or inactive")
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	if err := s.repo.UpdateUserStatus(ctx, id, status); err != nil {
		s.auditSvc.LogAction(ctx, &adminID, nil, "USER_STATUS_UPDATED", map[string]interface{}{
			"target_user_id": id, "status": status, "error": err.Error(),
		}, ip, "failure")
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "USER_STATUS_UPDATED", map[string]interface{}{
		"target_user_id": id, "status": status,
	}, ip, "success")

	return nil
}

// ResetUserPassword issues a temporary password for a locked-out user
// and emails it to them. The temp password is also returned so the
// admin can hand it over directly when the mail does not arrive.
func (s *service) ResetUserPassword(ctx context.Context, id uint, adminID uint, ip string) (string, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return "", err
	}

	tempPassword := uuid.New().String()[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateUserPassword(ctx, id, string(hash)); err != nil {
		s.auditSvc.LogAction(ctx, &adminID, nil, "USER_PASSWORD_RESET", map[string]interface{}{
			"target_user_id": id, "error": err.Error(),
		}, ip, "failure")
		return "", err
	}

	adminName := "Administrator"
	if admin, err := s.repo.GetUserByID(ctx, adminID); err == nil {
		adminName = admin.FullName
	}
	if err := utils.SendPasswordResetNotification(user.Email, user.FullName, adminName, tempPassword); err != nil {
		log.Printf("⚠️ password reset mail to %s failed: %v", user.Email, err)
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "USER_PASSWORD_RESET", map[string]interface{}{
		"target_user_id": id, "email": user.Email,
	}, ip, "success")

	return tempPassword, nil
}

func (s *service) DeleteUser(ctx context.Context, id uint, adminID uint, ip string) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role.RoleName == "admin" {
		return ErrCannotDeleteAdmin
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &adminID, nil, "USER_DELETED", map[string]interface{}{
			"target_user_id": id, "error": err.Error(),
		}, ip, "failure")
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "USER_DELETED", map[string]interface{}{
		"target_user_id": id, "email": user.Email,
	}, ip, "success")

	return nil
}

// =============================
// Permissions and grants
// =============================

func (s *service) CreatePermission(ctx context.Context, name, description string, adminID uint, ip string) (*auth.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("permission name is required")
	}

	if _, err := s.repo.GetPermissionByName(ctx, name); err == nil {
		return nil, ErrPermissionExists
	}

	p := &auth.Permission{Name: name, Description: description}
	if err := s.repo.CreatePermission(ctx, p); err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "PERMISSION_CREATED", map[string]interface{}{
		"permission": name,
	}, ip, "success")

	return p, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]auth.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// DeletePermission removes the permission and cascades its grants.
// Grant cleanup is best-effort: a partial failure leaves orphans that
// only get logged, never blocks the delete.
func (s *service) DeletePermission(ctx context.Context, id uint, adminID uint, ip string) error {
	p, err := s.repo.GetPermissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionNotFound
		}
		return err
	}

	removed, err := s.repo.DeleteGrantsForPermission(ctx, id)
	if err != nil {
		log.Printf("⚠️ cascade delete of grants for permission %q failed: %v", p.Name, err)
	}

	if err := s.repo.DeletePermission(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &adminID, nil, "PERMISSION_DELETED", map[string]interface{}{
			"permission": p.Name, "error": err.Error(),
		}, ip, "failure")
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "PERMISSION_DELETED", map[string]interface{}{
		"permission": p.Name, "grants_removed": removed,
	}, ip, "success")

	return nil
}

func (s *service) GrantPermission(ctx context.Context, roleID, permissionID uint, adminID uint, ip string) error {
	if _, err := s.repo.FindRoleByID(ctx, roleID); err != nil {
		return ErrRoleNotFound
	}
	if _, err := s.repo.GetPermissionByID(ctx, permissionID); err != nil {
		return ErrPermissionNotFound
	}

	exists, err := s.repo.GrantExists(ctx, roleID, permissionID)
	if err != nil {
		return err
	}
	if exists {
		return ErrGrantExists
	}

	grant := &auth.RolePermission{RoleID: roleID, PermissionID: permissionID}
	if err := s.repo.CreateGrant(ctx, grant); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "PERMISSION_GRANTED", map[string]interface{}{
		"role_id": roleID, "permission_id": permissionID,
	}, ip, "success")

	return nil
}

func (s *service) RevokePermission(ctx context.Context, roleID, permissionID uint, adminID uint, ip string) error {
	exists, err := s.repo.GrantExists(ctx, roleID, permissionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPermissionNotFound
	}

	if err := s.repo.DeleteGrant(ctx, roleID, permissionID); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, nil, "PERMISSION_REVOKED", map[string]interface{}{
		"role_id": roleID, "permission_id": permissionID,
	}, ip, "success")

	return nil
}

func (s *service) ListRolePermissions(ctx context.Context, roleID uint) ([]auth.Permission, error) {
	if _, err := s.repo.FindRoleByID(ctx, roleID); err != nil {
		return nil, ErrRoleNotFound
	}
	return s.repo.ListGrantsByRole(ctx, roleID)
}
