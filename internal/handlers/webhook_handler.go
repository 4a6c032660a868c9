package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/security/audit"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// Webhook bodies larger than this are rejected
const maxWebhookBodyBytes = 1 << 20

// WebhookProcessor validates a delivery and dispatches the notification
type WebhookProcessor interface {
	Process(ctx context.Context, raw []byte, signature string, meta paygate.RequestMeta) paygate.WebhookResult
}

// WebhookHandler receives PayGate Global payment notifications
type WebhookHandler struct {
	processor WebhookProcessor
	audit     AuditRecorder
	logger    *zap.Logger
}

// NewWebhookHandler creates a new webhook handler. auditor may be nil.
func NewWebhookHandler(processor WebhookProcessor, auditor AuditRecorder, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		processor: processor,
		audit:     auditor,
		logger:    logger.Named("paygate.webhook.http"),
	}
}

// HandlePayGateWebhook handles POST /<webhook route>
func (h *WebhookHandler) HandlePayGateWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	meta := paygate.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result := h.processor.Process(c.Request.Context(), raw, c.GetHeader(paygate.SignatureHeader), meta)
	h.recordAudit(c.Request.Context(), result, meta)

	c.JSON(result.StatusCode, result.Body)
}

func (h *WebhookHandler) recordAudit(ctx context.Context, result paygate.WebhookResult, meta paygate.RequestMeta) {
	if h.audit == nil {
		return
	}

	event := audit.Event{
		Type:      audit.EventTypeWebhook,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   result.StatusCode == http.StatusOK,
		Metadata:  map[string]interface{}{"status_code": result.StatusCode},
	}

	switch {
	case result.StatusCode == http.StatusUnauthorized:
		event.Severity = audit.SeverityWarning
		event.Description = "webhook rejected: invalid signature"
	case result.Notification != nil:
		event.Type = audit.EventTypePayment
		event.Description = "payment received"
		event.Reference = result.Notification.TxReference
		event.Metadata["identifier"] = result.Notification.Identifier
		event.Metadata["amount"] = result.Notification.Amount
	default:
		event.Severity = audit.SeverityError
		event.Description = "webhook rejected"
		if msg, ok := result.Body["error"]; ok {
			event.Metadata["error"] = msg
		}
	}

	if err := h.audit.Log(ctx, event); err != nil {
		h.logger.Error("failed to write audit log", zap.Error(err))
	}
}
