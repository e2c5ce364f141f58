package admin

import (
	"context"

	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
)

type Repository interface {
	// Approval workflow
	GetPendingEvents(ctx context.Context) ([]event.Event, error)
	GetEventByID(ctx context.Context, id uint) (*event.Event, error)
	ApplyEventDecision(ctx context.Context, eventID uint, status string, isPublic bool) error
	SetOrganizerApproved(ctx context.Context, userID uint) error

	// User management
	ListUsers(ctx context.Context, role, search string) ([]auth.User, error)
	GetUserByID(ctx context.Context, id uint) (*auth.User, error)
	UpdateUserStatus(ctx context.Context, id uint, status string) error
	UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error
	DeleteUser(ctx context.Context, id uint) error

	// Permissions and grants
	CreatePermission(ctx context.Context, p *auth.Permission) error
	ListPermissions(ctx context.Context) ([]auth.Permission, error)
	GetPermissionByID(ctx context.Context, id uint) (*auth.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*auth.Permission, error)
	DeletePermission(ctx context.Context, id uint) error
	DeleteGrantsForPermission(ctx context.Context, permissionID uint) (int64, error)

	CreateGrant(ctx context.Context, g *auth.RolePermission) error
	GrantExists(ctx context.Context, roleID, permissionID uint) (bool, error)
	DeleteGrant(ctx context.Context, roleID, permissionID uint) error
	ListGrantsByRole(ctx context.Context, roleID uint) ([]auth.Permission, error)
	FindRoleByID(ctx context.Context, id uint) (*auth.UserRole, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetPendingEvents(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Category").
		Where("status = ?", event.StatusPending).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) GetEventByID(ctx context.Context, id uint) (*event.Event, error) {
	var e event.Event
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Category").
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ApplyEventDecision writes status and visibility in one statement.
func (r *repository) ApplyEventDecision(ctx context.Context, eventID uint, status string, isPublic bool) error {
	return r.db.WithContext(ctx).
		Model(&event.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":    status,
			"is_public": isPublic,
		}).Error
}

func (r *repository) SetOrganizerApproved(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&auth.User{}).
		Where("id = ?", userID).
		Update("is_approved", true).Error
}

func (r *repository) ListUsers(ctx context.Context, role, search string) ([]auth.User, error) {
	query := r.db.WithContext(ctx).Preload("Role").Model(&auth.User{})

	if role != "" {
		query = query.
			Joins("JOIN user_roles ON users.role_id = user_roles.id").
			Where("user_roles.role_name = ?", role)
	}
	if search != "" {
		ilike := "%" + search + "%"
		query = query.Where("users.full_name ILIKE ? OR users.email ILIKE ?", ilike, ilike)
	}

	var users []auth.User
	err := query.Order("users.created_at DESC").Find(&users).Error
	return users, err
}

func (r *repository) GetUserByID(ctx context.Context, id uint) (*auth.User, error) {
	var u auth.User
	err := r.db.WithContext(ctx).Preload("Role").First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) UpdateUserStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&auth.User{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&auth.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *repository) DeleteUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&auth.User{}, id).Error
}

func (r *repository) CreatePermission(ctx context.Context, p *auth.Permission) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) ListPermissions(ctx context.Context) ([]auth.Permission, error) {
	var permissions []auth.Permission
	err := r.db.WithContext(ctx).Order("name ASC").Find(&permissions).Error
	return permissions, err
}

func (r *repository) GetPermissionByID(ctx context.Context, id uint) (*auth.Permission, error) {
	var p auth.Permission
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetPermissionByName(ctx context.Context, name string) (*auth.Permission, error) {
	var p auth.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) DeletePermission(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&auth.Permission{}, id).Error
}

// DeleteGrantsForPermission removes every grant referencing the
// permission and reports how many rows went away.
func (r *repository) DeleteGrantsForPermission(ctx context.Context, permissionID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("permission_id = ?", permissionID).
		Delete(&auth.RolePermission{})
	return res.RowsAffected, res.Error
}

func (r *repository) CreateGrant(ctx context.Context, g *auth.RolePermission) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *repository) GrantExists(ctx context.Context, roleID, permissionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&auth.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) DeleteGrant(ctx context.Context, roleID, permissionID uint) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&auth.RolePermission{}).Error
}

func (r *repository) ListGrantsByRole(ctx context.Context, roleID uint) ([]auth.Permission, error) {
	var permissions []auth.Permission
	err := r.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *repository) FindRoleByID(ctx context.Context, id uint) (*auth.UserRole, error) {
	var role auth.UserRole
	err := r.db.WithContext(ctx).First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}
