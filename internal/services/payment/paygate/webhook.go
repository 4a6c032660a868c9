package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/metrics"
)

// Sink receives payment notifications produced by accepted webhooks
type Sink interface {
	Publish(ctx context.Context, payment PaymentReceived) error
}

// RequestMeta describes where a webhook delivery came from
type RequestMeta struct {
	IP        string
	UserAgent string
}

// WebhookResult is the response to send back to the gateway
type WebhookResult struct {
	StatusCode   int
	Body         map[string]string
	Notification *PaymentReceived
}

// Fields every payment notification must carry, in the order they are checked
var requiredWebhookFields = []string{
	"tx_reference",
	"identifier",
	"amount",
	"datetime",
	"payment_method",
	"phone_number",
}

// WebhookProcessor validates inbound payment notifications and forwards
// accepted ones to a Sink. It keeps no state between deliveries, so duplicate
// deliveries of the same tx_reference are forwarded again.
type WebhookProcessor struct {
	secret   string
	verifier *SignatureVerifier
	sink     Sink
	logger   *zap.Logger
}

// NewWebhookProcessor creates a processor. Signatures are only checked when
// secret is non-empty.
func NewWebhookProcessor(secret string, sink Sink, logger *zap.Logger) *WebhookProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("paygate.webhook")
	return &WebhookProcessor{
		secret:   secret,
		verifier: NewSignatureVerifier(secret, logger),
		sink:     sink,
		logger:   logger,
	}
}

// Process runs the signature and completeness gates over one delivery
func (p *WebhookProcessor) Process(ctx context.Context, raw []byte, signature string, meta RequestMeta) (result WebhookResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("webhook processing panicked",
				zap.Any("panic", r),
				zap.ByteString("payload", raw),
				zap.Stack("stack"))
			result = internalErrorResult()
		}
	}()

	payload, err := decodeWebhookPayload(raw)
	if err != nil {
		p.logger.Error("webhook payload decode failed",
			zap.Error(err),
			zap.ByteString("payload", raw))
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		return internalErrorResult()
	}

	p.logger.Info("webhook received", zap.ByteString("payload", raw))

	if p.secret != "" && !p.verifier.Verify(raw, signature) {
		p.logger.Warn("invalid webhook signature",
			zap.ByteString("payload", raw),
			zap.String("signature", signature),
			zap.String("ip", meta.IP),
			zap.String("user_agent", meta.UserAgent))
		metrics.WebhooksTotal.WithLabelValues("unauthorized").Inc()
		return WebhookResult{
			StatusCode: http.StatusUnauthorized,
			Body:       map[string]string{"error": "Invalid signature"},
		}
	}

	for _, field := range requiredWebhookFields {
		if v, ok := payload[field]; !ok || v == nil {
			p.logger.Error("webhook missing required field",
				zap.String("field", field),
				zap.ByteString("payload", raw))
			metrics.WebhooksTotal.WithLabelValues("bad_request").Inc()
			return WebhookResult{
				StatusCode: http.StatusBadRequest,
				Body:       map[string]string{"error": "Missing field: " + field},
			}
		}
	}

	amount, err := toFloat(payload["amount"])
	if err != nil {
		p.logger.Error("webhook amount is not numeric",
			zap.Error(err),
			zap.ByteString("payload", raw))
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		return internalErrorResult()
	}

	notification := PaymentReceived{
		TxReference:   asString(payload["tx_reference"]),
		Identifier:    asString(payload["identifier"]),
		Amount:        amount,
		Datetime:      asString(payload["datetime"]),
		PaymentMethod: asString(payload["payment_method"]),
		PhoneNumber:   asString(payload["phone_number"]),
		Raw:           append(json.RawMessage(nil), raw...),
	}
	if ref, ok := payload["payment_reference"]; ok && ref != nil {
		s := asString(ref)
		notification.PaymentReference = &s
	}

	if err := p.sink.Publish(ctx, notification); err != nil {
		p.logger.Error("payment notification delivery failed",
			zap.Error(err),
			zap.String("tx_reference", notification.TxReference),
			zap.ByteString("payload", raw))
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		return internalErrorResult()
	}

	p.logger.Info("payment received event dispatched",
		zap.String("tx_reference", notification.TxReference),
		zap.String("identifier", notification.Identifier),
		zap.Float64("amount", notification.Amount))
	metrics.WebhooksTotal.WithLabelValues("accepted").Inc()

	return WebhookResult{
		StatusCode:   http.StatusOK,
		Body:         map[string]string{"status": "success"},
		Notification: &notification,
	}
}

func internalErrorResult() WebhookResult {
	return WebhookResult{
		StatusCode: http.StatusInternalServerError,
		Body:       map[string]string{"error": "Internal server error"},
	}
}

func decodeWebhookPayload(raw []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty webhook body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid webhook body: %w", err)
	}
	if payload == nil {
		return nil, errors.New("webhook body is not a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid webhook body: trailing data after JSON object")
	}
	return payload, nil
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
