package database

import (
	"gorm.io/gorm"

	"github.com/managerate/managerate/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Manager{},
		&models.Review{},
		&models.Verification{},
	)
}
