package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cdc_zoning/internal/model"
)

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB, log *logrus.Entry) error {
	log.Info("Starting database migration...")

	models := []interface{}{
		&model.OperationLog{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Infof("✓ Database migration completed successfully (%d tables)", len(models))
	return nil
}
