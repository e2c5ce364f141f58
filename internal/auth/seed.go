package auth

import (
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedUserRoles ensures the three built-in roles exist.
func SeedUserRoles(db *gorm.DB) error {
	roles := []UserRole{
		{RoleName: "admin", Description: "Platform administrator", CanRegisterPublicly: false},
		{RoleName: "organizer", Description: "Creates and manages events", CanRegisterPublicly: true},
		{RoleName: "user", Description: "Registers as an event attendee", CanRegisterPublicly: true},
	}

	for _, role := range roles {
		var existing UserRole
		err := db.Where("role_name = ?", role.RoleName).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			log.Printf("✅ Seeded role: %s", role.RoleName)
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SeedAdminUser creates the bootstrap admin account if it does not exist.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD env vars.
func SeedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️ ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var adminRole UserRole
	if err := db.Where("role_name = ?", "admin").First(&adminRole).Error; err != nil {
		return errors.New("admin role not seeded")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		FullName:     "Platform Admin",
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       adminRole.ID,
		IsApproved:   true,
		Status:       "active",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded admin user: %s", email)
	return nil
}

// SeedPermissions ensures the built-in permissions exist and grants
// the full set to the admin role.
func SeedPermissions(db *gorm.DB) error {
	permissions := []Permission{
		{Name: "event:approve", Description: "Approve or reject submitted events"},
		{Name: "event:manage", Description: "Create, update and delete own events"},
		{Name: "user:manage", Description: "Manage platform users"},
		{Name: "category:manage", Description: "Manage event categories"},
		{Name: "report:export", Description: "Export event and attendee reports"},
	}

	var adminRole UserRole
	if err := db.Where("role_name = ?", "admin").First(&adminRole).Error; err != nil {
		return errors.New("admin role not seeded")
	}

	for _, perm := range permissions {
		var existing Permission
		err := db.Where("name = ?", perm.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&perm).Error; err != nil {
				return err
			}
			existing = perm
		} else if err != nil {
			return err
		}

		var grant RolePermission
		err = db.Where("role_id = ? AND permission_id = ?", adminRole.ID, existing.ID).First(&grant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			grant = RolePermission{RoleID: adminRole.ID, PermissionID: existing.ID}
			if err := db.Create(&grant).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
