package category

import (
	"errors"
	"log"

	"gorm.io/gorm"
)

// SeedCategories ensures the default category set exists.
func SeedCategories(db *gorm.DB) error {
	names := []string{
		"Food", "Festival", "Wedding", "Education",
		"Political", "Concert", "Sports", "Gaming",
	}

	for _, name := range names {
		var existing Category
		err := db.Where("name = ?", name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&Category{Name: name, IsActive: true}).Error; err != nil {
				return err
			}
			log.Printf("✅ Seeded category: %s", name)
		} else if err != nil {
			return err
		}
	}
	return nil
}
