package database

import (
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Folder{},
		&models.File{},
		&models.SyllabusSection{},
		&models.Bookmark{},
		&models.FileProgress{},
		&models.MCQQuestion{},
		&models.ScopeLock{},
	)
}
