// Package db opens the backend's gorm connection and keeps the schema
// migrated.
package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rgoncalves/fieldsync/internal/server/models"
)

// Open connects to Postgres at dsn and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate applies AutoMigrate for every model. Dialector-agnostic so the
// handler tests can run it against SQLite.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.WorkArea{},
		&models.CollectionPoint{},
		&models.MeasurementType{},
		&models.MeasurementBatch{},
		&models.MeasurementItem{},
		&models.PhotoRecord{},
		&models.AppVersion{},
		&models.ActionLog{},
	)
	if err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}
	return nil
}
