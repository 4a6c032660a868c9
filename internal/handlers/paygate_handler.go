package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/models"
	"github.com/revaspay/paygate/internal/security/audit"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
	"github.com/revaspay/paygate/internal/utils"
)

// PayGateService is the gateway client used by the merchant API
type PayGateService interface {
	InitiatePayment(ctx context.Context, req paygate.TransactionRequest) (paygate.GatewayResponse, error)
	CheckStatus(ctx context.Context, txReference string) (paygate.GatewayResponse, error)
	CheckStatusByIdentifier(ctx context.Context, identifier string) (paygate.GatewayResponse, error)
	CheckBalance(ctx context.Context) (paygate.GatewayResponse, error)
	Disburse(ctx context.Context, req paygate.DisbursementRequest) (paygate.GatewayResponse, error)
	GeneratePaymentURL(params paygate.PaymentPageParams) (string, error)
}

// TransactionRecorder stores payments accepted by the gateway
type TransactionRecorder interface {
	RecordInitiated(ctx context.Context, req paygate.TransactionRequest, resp paygate.GatewayResponse) (*models.PayGateTransaction, error)
}

// AuditRecorder writes audit events
type AuditRecorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// PayGateHandler serves the merchant facing PayGate API
type PayGateHandler struct {
	service          PayGateService
	recorder         TransactionRecorder
	audit            AuditRecorder
	defaultReturnURL string
	logger           *zap.Logger
}

// NewPayGateHandler creates a new PayGate handler. recorder and auditor may be nil.
func NewPayGateHandler(service PayGateService, recorder TransactionRecorder, auditor AuditRecorder, defaultReturnURL string, logger *zap.Logger) *PayGateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayGateHandler{
		service:          service,
		recorder:         recorder,
		audit:            auditor,
		defaultReturnURL: defaultReturnURL,
		logger:           logger.Named("paygate.api"),
	}
}

// InitiatePaymentRequest represents a request to push a payment to a phone
type InitiatePaymentRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Identifier  string  `json:"identifier" binding:"required"`
	Network     string  `json:"network" binding:"required"`
	Description string  `json:"description"`
}

// InitiatePayment handles direct payment requests
func (h *PayGateHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txReq := paygate.TransactionRequest{
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Identifier:  req.Identifier,
		Network:     req.Network,
		Description: req.Description,
	}

	resp, err := h.service.InitiatePayment(c.Request.Context(), txReq)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status, hasStatus := resp.Status()
	if hasStatus && status == paygate.TransactionStatusRecorded && h.recorder != nil {
		if _, err := h.recorder.RecordInitiated(c.Request.Context(), txReq, resp); err != nil {
			// The gateway already holds the payment; the webhook will record it
			h.logger.Error("failed to record initiated payment",
				zap.String("identifier", req.Identifier),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, withMessage(resp, paygate.TransactionStatusMessage))
}

// PaymentURLRequest represents a request for a hosted payment page URL
type PaymentURLRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Identifier  string  `json:"identifier" binding:"required"`
	Description string  `json:"description"`
	Phone       string  `json:"phone"`
	Network     string  `json:"network"`
	SuccessURL  string  `json:"success_url"`
	ReturnURL   string  `json:"return_url"`
}

// PaymentURL builds the hosted payment page URL
func (h *PayGateHandler) PaymentURL(c *gin.Context) {
	var req PaymentURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := paygate.PaymentPageParams{
		Amount:      req.Amount,
		Identifier:  req.Identifier,
		Description: req.Description,
		Phone:       req.Phone,
		Network:     req.Network,
		SuccessURL:  req.SuccessURL,
		ReturnURL:   req.ReturnURL,
	}
	if params.SuccessURL == "" && params.ReturnURL == "" {
		params.ReturnURL = h.defaultReturnURL
	}

	paymentURL, err := h.service.GeneratePaymentURL(params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_url": paymentURL})
}

// CheckStatus handles status lookups by gateway transaction reference
func (h *PayGateHandler) CheckStatus(c *gin.Context) {
	resp, err := h.service.CheckStatus(c.Request.Context(), c.Param("tx_reference"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withMessage(resp, paygate.StatusMessage))
}

// CheckStatusByIdentifier handles status lookups by merchant identifier
func (h *PayGateHandler) CheckStatusByIdentifier(c *gin.Context) {
	resp, err := h.service.CheckStatusByIdentifier(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withMessage(resp, paygate.StatusMessage))
}

// CheckBalance returns the merchant balance per network
func (h *PayGateHandler) CheckBalance(c *gin.Context) {
	resp, err := h.service.CheckBalance(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": resp})
}

// DisburseRequest represents a payout request
type DisburseRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Reason      string  `json:"reason" binding:"required"`
	Network     string  `json:"network" binding:"required"`
	Reference   string  `json:"reference"`
}

// Disburse handles payouts to mobile money accounts
func (h *PayGateHandler) Disburse(c *gin.Context) {
	var req DisburseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Reference == "" {
		req.Reference = utils.GenerateReference("DISB")
	}

	resp, err := h.service.Disburse(c.Request.Context(), paygate.DisbursementRequest{
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Network:     req.Network,
		Reference:   req.Reference,
	})

	h.recordAudit(c, audit.Event{
		Type:        audit.EventTypeDisbursement,
		Description: "disbursement requested",
		Reference:   req.Reference,
		Success:     err == nil,
		Metadata: map[string]interface{}{
			"amount":  req.Amount,
			"network": req.Network,
		},
	})

	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": resp, "reference": req.Reference})
}

func (h *PayGateHandler) recordAudit(c *gin.Context, event audit.Event) {
	if h.audit == nil {
		return
	}
	event.IPAddress = c.ClientIP()
	event.UserAgent = c.GetHeader("User-Agent")
	if err := h.audit.Log(c.Request.Context(), event); err != nil {
		h.logger.Error("failed to write audit log", zap.Error(err))
	}
}

func (h *PayGateHandler) respondError(c *gin.Context, err error) {
	var validationErr *paygate.ValidationError
	var unavailableErr *paygate.GatewayUnavailableError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &unavailableErr):
		h.logger.Error("paygate unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		h.logger.Error("paygate request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// withMessage wraps a gateway response with the catalog text for its status
func withMessage(resp paygate.GatewayResponse, describe func(int) string) gin.H {
	body := gin.H{"response": resp}
	if status, ok := resp.Status(); ok {
		body["status_message"] = describe(status)
	}
	return body
}
