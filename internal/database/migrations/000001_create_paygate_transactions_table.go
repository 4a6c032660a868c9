package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createPayGateTransactionsMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_paygate_transactions_table",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE EXTENSION IF NOT EXISTS "pgcrypto";

				CREATE TABLE IF NOT EXISTS paygate_transactions (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tx_reference VARCHAR(255) UNIQUE,
					identifier VARCHAR(255) NOT NULL,
					payment_reference VARCHAR(255),
					amount DECIMAL(15,2) NOT NULL,
					phone_number VARCHAR(20) NOT NULL,
					network VARCHAR(10) NOT NULL,
					payment_method VARCHAR(20),
					description TEXT,
					status INT NOT NULL DEFAULT 2,
					payment_datetime TIMESTAMP WITH TIME ZONE,
					webhook_payload JSONB,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				)
			`).Error; err != nil {
				return err
			}

			// Lookups by merchant identifier, by payer and by status for reconciliation
			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_paygate_transactions_identifier ON paygate_transactions(identifier);
				CREATE INDEX IF NOT EXISTS idx_paygate_transactions_status ON paygate_transactions(status);
				CREATE INDEX IF NOT EXISTS idx_paygate_identifier_status ON paygate_transactions(identifier, status);
				CREATE INDEX IF NOT EXISTS idx_paygate_phone_network ON paygate_transactions(phone_number, network);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS paygate_transactions").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createPayGateTransactionsMigration())
}
