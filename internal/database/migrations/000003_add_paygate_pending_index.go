package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func addPayGatePendingIndexMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_add_paygate_pending_index",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_paygate_status_updated_at
					ON paygate_transactions(status, updated_at);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP INDEX IF EXISTS idx_paygate_status_updated_at").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, addPayGatePendingIndexMigration())
}
