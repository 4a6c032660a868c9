package paygate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Network is a mobile money network supported by PayGate Global
type Network string

const (
	NetworkFlooz  Network = "FLOOZ"
	NetworkTMoney Network = "TMONEY"
)

// ParseNetwork upper-cases a caller supplied network name and checks it is supported
func ParseNetwork(s string) (Network, bool) {
	n := Network(strings.ToUpper(strings.TrimSpace(s)))
	switch n {
	case NetworkFlooz, NetworkTMoney:
		return n, true
	}
	return n, false
}

// TransactionRequest is a direct (push) payment request.
// Identifier is the caller's idempotency key and must be globally unique.
type TransactionRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	Identifier  string  `json:"identifier"`
	Network     string  `json:"network"`
	Description string  `json:"description,omitempty"`
}

// DisbursementRequest is a payout to a mobile money account
type DisbursementRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
	Network     string  `json:"network"`
	Reference   string  `json:"reference,omitempty"`
}

// PaymentPageParams are the parameters of the hosted payment page redirect.
// SuccessURL takes precedence over ReturnURL.
type PaymentPageParams struct {
	Amount      float64 `json:"amount"`
	Identifier  string  `json:"identifier"`
	Description string  `json:"description,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Network     string  `json:"network,omitempty"`
	SuccessURL  string  `json:"success_url,omitempty"`
	ReturnURL   string  `json:"return_url,omitempty"`
}

// GatewayResponse is the decoded JSON object returned by the gateway.
// Its schema belongs to the gateway, so it is kept as an open map.
type GatewayResponse map[string]interface{}

// Status returns the numeric "status" field when present
func (r GatewayResponse) Status() (int, bool) {
	return toInt(r["status"])
}

// TxReference returns the gateway transaction reference, or "" when absent
func (r GatewayResponse) TxReference() string {
	return r.String("tx_reference")
}

// String returns a field rendered as a string, or "" when absent
func (r GatewayResponse) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// PaymentReceived is emitted once per accepted webhook delivery
type PaymentReceived struct {
	TxReference      string  `json:"tx_reference"`
	Identifier       string  `json:"identifier"`
	PaymentReference *string `json:"payment_reference"`
	Amount           float64 `json:"amount"`
	Datetime         string  `json:"datetime"`
	PaymentMethod    string  `json:"payment_method"`
	PhoneNumber      string  `json:"phone_number"`
	// Raw is the webhook body exactly as received
	Raw json.RawMessage `json:"raw,omitempty"`
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, error) {
	f, err := parseFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %v", v)
	}
	return f, nil
}

func parseFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}
