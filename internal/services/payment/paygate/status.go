package paygate

// Payment status codes returned by /status and /v2/status
const (
	PaymentStatusSuccess    = 0
	PaymentStatusInProgress = 2
	PaymentStatusExpired    = 4
	PaymentStatusCancelled  = 6
)

// Registration status codes returned by /pay
const (
	TransactionStatusRecorded         = 0
	TransactionStatusInvalidToken     = 2
	TransactionStatusInvalidParams    = 4
	TransactionStatusDuplicateRequest = 6
)

const (
	unknownPaymentStatus     = "Unknown status"
	unknownTransactionStatus = "Unknown transaction status"
)

var paymentStatusMessages = map[int]string{
	PaymentStatusSuccess:    "Payment completed successfully",
	PaymentStatusInProgress: "In progress",
	PaymentStatusExpired:    "Expired",
	PaymentStatusCancelled:  "Cancelled",
}

var transactionStatusMessages = map[int]string{
	TransactionStatusRecorded:         "Transaction recorded successfully",
	TransactionStatusInvalidToken:     "Invalid authentication token",
	TransactionStatusInvalidParams:    "Invalid parameters",
	TransactionStatusDuplicateRequest: "Duplicate detected: a transaction with the same identifier already exists",
}

// StatusMessage describes a payment status code
func StatusMessage(code int) string {
	if msg, ok := paymentStatusMessages[code]; ok {
		return msg
	}
	return unknownPaymentStatus
}

// TransactionStatusMessage describes a transaction registration status code
func TransactionStatusMessage(code int) string {
	if msg, ok := transactionStatusMessages[code]; ok {
		return msg
	}
	return unknownTransactionStatus
}
