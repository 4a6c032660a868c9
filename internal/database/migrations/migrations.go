package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// migrationsList holds all migrations
var migrationsList []*gormigrate.Migration

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrationsList)

	if err := m.Migrate(); err != nil {
		logger.Error("could not migrate", zap.Error(err))
		return err
	}
	logger.Info("migrations ran successfully", zap.Int("count", len(migrationsList)))
	return nil
}

// IDs lists the registered migration IDs in run order
func IDs() []string {
	ids := make([]string, 0, len(migrationsList))
	for _, m := range migrationsList {
		ids = append(ids, m.ID)
	}
	return ids
}
