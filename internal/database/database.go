package database

import (
	"strings"

	"github.com/arnold/okrmaster-api/internal/config"
	"github.com/arnold/okrmaster-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Open connects to dsn without touching the global handle.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	// Use PostgreSQL if URL starts with postgres, otherwise SQLite
	if strings.HasPrefix(dsn, "postgres") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func Migrate() error {
	return DB.AutoMigrate(
		&models.Organization{},
		&models.Profile{},
		&models.OrganizationInvite{},
		&models.Objective{},
		&models.KeyResult{},
		&models.CoachingSession{},
		&models.Comment{},
		&models.Activity{},
		&models.Notification{},
	)
}
