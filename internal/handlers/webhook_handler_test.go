package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/revaspay/paygate/internal/security/audit"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

const (
	testWebhookSecret  = "secret123"
	testWebhookRoute   = "/paygate-global/webhook"
	testWebhookPayload = `{"tx_reference":"TXN123456","identifier":"ORDER123","payment_reference":"FLOOZ123456","amount":1000,"datetime":"2024-01-01 12:00:00","payment_method":"FLOOZ","phone_number":"+22890123456"}`
)

// MockSink is a mock implementation of paygate.Sink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Publish(ctx context.Context, payment paygate.PaymentReceived) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockAuditRecorder is a mock implementation of AuditRecorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Log(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func setupWebhookRouter(secret string, sink paygate.Sink, auditor AuditRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	processor := paygate.NewWebhookProcessor(secret, sink, nil)
	handler := NewWebhookHandler(processor, auditor, nil)
	router.POST(testWebhookRoute, handler.HandlePayGateWebhook)
	return router
}

func postWebhook(router *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, testWebhookRoute, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(paygate.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandlerAcceptsSignedPayment(t *testing.T) {
	sink := new(MockSink)
	sink.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	auditor := new(MockAuditRecorder)
	auditor.On("Log", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.EventTypePayment && e.Reference == "TXN123456" && e.Success
	})).Return(nil).Once()

	router := setupWebhookRouter(testWebhookSecret, sink, auditor)
	signature := paygate.ComputeSignature([]byte(testWebhookPayload), testWebhookSecret)

	w := postWebhook(router, testWebhookPayload, signature)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	sink.AssertExpectations(t)
	auditor.AssertExpectations(t)

	published := sink.Calls[0].Arguments.Get(1).(paygate.PaymentReceived)
	assert.Equal(t, 1000.0, published.Amount)
	assert.Equal(t, "ORDER123", published.Identifier)
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	sink := new(MockSink)
	auditor := new(MockAuditRecorder)
	auditor.On("Log", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.EventTypeWebhook && e.Severity == audit.SeverityWarning && !e.Success
	})).Return(nil).Once()

	router := setupWebhookRouter(testWebhookSecret, sink, auditor)

	w := postWebhook(router, testWebhookPayload, "invalid-signature")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid signature"}`, w.Body.String())
	sink.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	auditor.AssertExpectations(t)
}

func TestWebhookHandlerWithoutSecret(t *testing.T) {
	sink := new(MockSink)
	sink.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	router := setupWebhookRouter("", sink, nil)

	w := postWebhook(router, testWebhookPayload, "")

	assert.Equal(t, http.StatusOK, w.Code)
	sink.AssertExpectations(t)
}

func TestWebhookHandlerMissingField(t *testing.T) {
	sink := new(MockSink)
	router := setupWebhookRouter("", sink, nil)

	w := postWebhook(router, `{"tx_reference":"TXN123456","amount":1000}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing field: identifier"}`, w.Body.String())
	sink.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestWebhookHandlerMalformedJSON(t *testing.T) {
	sink := new(MockSink)
	auditor := new(MockAuditRecorder)
	auditor.On("Log", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Severity == audit.SeverityError && e.Metadata["error"] == "Internal server error"
	})).Return(nil).Once()

	router := setupWebhookRouter("", sink, auditor)

	w := postWebhook(router, `{not json`, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	sink.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	auditor.AssertExpectations(t)
}

func TestWebhookHandlerRejectsOversizedBody(t *testing.T) {
	sink := new(MockSink)
	router := setupWebhookRouter("", sink, nil)

	body := `{"pad":"` + string(bytes.Repeat([]byte("a"), maxWebhookBodyBytes)) + `"}`
	w := postWebhook(router, body, "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	sink.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
