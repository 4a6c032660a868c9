package models

import (
	"time"
)

// Payment status codes stored on PayGateTransaction, as reported by the gateway
const (
	PayGateStatusSuccess    = 0
	PayGateStatusInProgress = 2
	PayGateStatusExpired    = 4
	PayGateStatusCancelled  = 6
)

// PayGateTransaction is one payment made through PayGate Global
type PayGateTransaction struct {
	Base
	TxReference      *string    `gorm:"type:varchar(255);uniqueIndex" json:"tx_reference"`
	Identifier       string     `gorm:"type:varchar(255);not null;index;index:idx_paygate_identifier_status,priority:1" json:"identifier"`
	PaymentReference *string    `gorm:"type:varchar(255)" json:"payment_reference,omitempty"`
	Amount           float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	PhoneNumber      string     `gorm:"type:varchar(20);not null;index:idx_paygate_phone_network,priority:1" json:"phone_number"`
	Network          string     `gorm:"type:varchar(10);not null;index:idx_paygate_phone_network,priority:2" json:"network"`
	PaymentMethod    *string    `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	Description      *string    `gorm:"type:text" json:"description,omitempty"`
	Status           int        `gorm:"not null;default:2;index;index:idx_paygate_identifier_status,priority:2" json:"status"`
	PaymentDatetime  *time.Time `json:"payment_datetime,omitempty"`
	WebhookPayload   JSON       `gorm:"type:jsonb" json:"webhook_payload,omitempty"`
}

// TableName overrides the table name
func (PayGateTransaction) TableName() string {
	return "paygate_transactions"
}

// IsPending reports whether the gateway may still change the status
func (t *PayGateTransaction) IsPending() bool {
	return t.Status == PayGateStatusInProgress
}

// IsKnownPayGateStatus reports whether code is one of the stored payment statuses
func IsKnownPayGateStatus(code int) bool {
	switch code {
	case PayGateStatusSuccess, PayGateStatusInProgress, PayGateStatusExpired, PayGateStatusCancelled:
		return true
	}
	return false
}
