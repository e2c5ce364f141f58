package auth

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the user_roles table
type UserRole struct {
	ID                  uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName            string `gorm:"size:50;unique;not null" json:"role_name"`
	Description         string `gorm:"size:255" json:"description"`
	CanRegisterPublicly bool   `gorm:"default:true" json:"can_register_publicly"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// User represents the users table
type User struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName     string   `gorm:"size:255;not null" json:"full_name"`
	Email        string   `gorm:"size:255;unique;not null" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Phone        string   `gorm:"size:20" json:"phone"`
	RoleID       uint     `gorm:"not null" json:"role_id"`
	Role         UserRole `gorm:"foreignKey:RoleID;references:ID" json:"role"`

	// Organizers start unapproved; an admin approving any of their
	// events flips this on permanently.
	IsApproved bool `gorm:"default:false" json:"is_approved"`

	Status    string         `gorm:"size:20;default:active" json:"status"` // active, inactive
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Permission represents a named capability that can be granted to roles
type Permission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;unique;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission grants a permission to a role
type RolePermission struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID       uint       `gorm:"not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint       `gorm:"not null;uniqueIndex:idx_role_permission" json:"permission_id"`
	Role         UserRole   `gorm:"foreignKey:RoleID;references:ID" json:"-"`
	Permission   Permission `gorm:"foreignKey:PermissionID;references:ID" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// PublicRoleResponse is the public-facing shape of a registerable role
type PublicRoleResponse struct {
	ID          uint   `json:"id"`
	RoleName    string `json:"role_name"`
	Description string `json:"description"`
}
