package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/revaspay/paygate/internal/models"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// ErrTransactionNotFound is returned when no transaction matches a lookup
var ErrTransactionNotFound = errors.New("paygate transaction not found")

// Layout of the "datetime" field sent in webhooks
const webhookDatetimeLayout = "2006-01-02 15:04:05"

// TransactionStore persists PayGate transactions
type TransactionStore struct {
	db *gorm.DB
}

// NewTransactionStore creates a store backed by db
func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// RecordInitiated stores a payment request accepted by the gateway
func (s *TransactionStore) RecordInitiated(ctx context.Context, req paygate.TransactionRequest, resp paygate.GatewayResponse) (*models.PayGateTransaction, error) {
	tx := initiatedTransaction(req, resp)
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, fmt.Errorf("failed to record paygate transaction %s: %w", req.Identifier, err)
	}
	return tx, nil
}

// RecordPayment stores a webhook notification. Repeated deliveries of the
// same tx_reference update the existing row.
func (s *TransactionStore) RecordPayment(ctx context.Context, payment paygate.PaymentReceived) error {
	tx := receivedTransaction(payment)

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tx_reference"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_reference",
				"payment_method",
				"status",
				"payment_datetime",
				"webhook_payload",
				"updated_at",
			}),
		}).
		Create(tx).Error
	if err != nil {
		return fmt.Errorf("failed to record payment %s: %w", payment.TxReference, err)
	}
	return nil
}

// ListPending returns in-progress transactions that have a gateway reference,
// least recently touched first
func (s *TransactionStore) ListPending(ctx context.Context, limit int) ([]models.PayGateTransaction, error) {
	var txs []models.PayGateTransaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND tx_reference IS NOT NULL", models.PayGateStatusInProgress).
		Order("updated_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	return txs, nil
}

// UpdateStatus sets the status of a transaction and, when known, its payment method
func (s *TransactionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status int, paymentMethod string) error {
	updates := map[string]interface{}{"status": status}
	if paymentMethod != "" {
		updates["payment_method"] = paymentMethod
	}

	result := s.db.WithContext(ctx).
		Model(&models.PayGateTransaction{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// MarkChecked bumps updated_at so the row moves behind other pending rows
func (s *TransactionStore) MarkChecked(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.PayGateTransaction{}).
		Where("id = ?", id).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark transaction %s checked: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// FindByIdentifier returns the most recent transaction for a merchant identifier
func (s *TransactionStore) FindByIdentifier(ctx context.Context, identifier string) (*models.PayGateTransaction, error) {
	var tx models.PayGateTransaction
	err := s.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		Order("created_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", identifier, err)
	}
	return &tx, nil
}

func initiatedTransaction(req paygate.TransactionRequest, resp paygate.GatewayResponse) *models.PayGateTransaction {
	network, _ := paygate.ParseNetwork(req.Network)

	tx := &models.PayGateTransaction{
		Identifier:  req.Identifier,
		Amount:      req.Amount,
		PhoneNumber: req.PhoneNumber,
		Network:     string(network),
		Status:      models.PayGateStatusInProgress,
	}
	if ref := resp.TxReference(); ref != "" {
		tx.TxReference = &ref
	}
	if req.Description != "" {
		desc := req.Description
		tx.Description = &desc
	}
	return tx
}

func receivedTransaction(payment paygate.PaymentReceived) *models.PayGateTransaction {
	ref := payment.TxReference
	method := payment.PaymentMethod

	network := strings.ToUpper(strings.TrimSpace(method))
	if len(network) > 10 {
		network = network[:10]
	}

	tx := &models.PayGateTransaction{
		TxReference:      &ref,
		Identifier:       payment.Identifier,
		PaymentReference: payment.PaymentReference,
		Amount:           payment.Amount,
		PhoneNumber:      payment.PhoneNumber,
		Network:          network,
		PaymentMethod:    &method,
		Status:           models.PayGateStatusSuccess,
		WebhookPayload:   models.JSON(payment.Raw),
	}
	if t, ok := parseWebhookDatetime(payment.Datetime); ok {
		tx.PaymentDatetime = &t
	}
	return tx
}

func parseWebhookDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{webhookDatetimeLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
