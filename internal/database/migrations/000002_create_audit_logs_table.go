package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createAuditLogsMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_audit_logs_table",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS audit_logs (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					event_type VARCHAR(50) NOT NULL,
					severity VARCHAR(20) NOT NULL,
					description TEXT,
					reference VARCHAR(255),
					ip_address VARCHAR(64),
					user_agent TEXT,
					metadata JSONB,
					success BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_audit_logs_event_type ON audit_logs(event_type);
				CREATE INDEX IF NOT EXISTS idx_audit_logs_reference ON audit_logs(reference);
				CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS audit_logs").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createAuditLogsMigration())
}
