package database

import (
	"fmt"

	"github.com/oetzilabs/ciftlikpdf/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models. The partial
// unique indexes on donations (one live donation per sponsor and year) and
// templates (at most one live default) are declared on the models and
// created here.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Sponsor{},
		&models.Donation{},
		&models.Template{},
		&models.Session{},
		&models.AdminRequest{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
