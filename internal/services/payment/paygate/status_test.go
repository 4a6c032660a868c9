package paygate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Payment completed successfully", StatusMessage(PaymentStatusSuccess))
	assert.Equal(t, "In progress", StatusMessage(PaymentStatusInProgress))
	assert.Equal(t, "Expired", StatusMessage(PaymentStatusExpired))
	assert.Equal(t, "Cancelled", StatusMessage(PaymentStatusCancelled))
	assert.Equal(t, "Unknown status", StatusMessage(99))
	assert.Equal(t, "Unknown status", StatusMessage(-1))
}

func TestTransactionStatusMessage(t *testing.T) {
	assert.Equal(t, "Transaction recorded successfully", TransactionStatusMessage(TransactionStatusRecorded))
	assert.Equal(t, "Invalid authentication token", TransactionStatusMessage(TransactionStatusInvalidToken))
	assert.Equal(t, "Invalid parameters", TransactionStatusMessage(TransactionStatusInvalidParams))
	assert.Contains(t, TransactionStatusMessage(TransactionStatusDuplicateRequest), "Duplicate")
	assert.Equal(t, "Unknown transaction status", TransactionStatusMessage(1))
}

func TestParseNetwork(t *testing.T) {
	n, ok := ParseNetwork(" flooz ")
	assert.True(t, ok)
	assert.Equal(t, NetworkFlooz, n)

	n, ok = ParseNetwork("TMoney")
	assert.True(t, ok)
	assert.Equal(t, NetworkTMoney, n)

	_, ok = ParseNetwork("MTN")
	assert.False(t, ok)
}
