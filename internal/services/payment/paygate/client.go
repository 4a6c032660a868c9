package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/config"
	"github.com/revaspay/paygate/internal/metrics"
)

const (
	// API endpoints, relative to the configured base URL
	payEndpoint          = "/pay"
	statusEndpoint       = "/status"
	statusV2Endpoint     = "/v2/status"
	checkBalanceEndpoint = "/check-balance"
	disbursementEndpoint = "/disburse"
)

// Client is the PayGate Global API client.
// It holds only read-only configuration and is safe for concurrent use.
type Client struct {
	cfg    config.PayGateConfig
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a PayGate Global client. It fails with ErrMissingAuthToken
// when no auth token is configured.
func NewClient(cfg config.PayGateConfig, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	if logger == nil || !cfg.LogRequests {
		logger = zap.NewNop()
	}

	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		cfg:    cfg,
		http:   r,
		logger: logger.Named("paygate"),
	}, nil
}

type payBody struct {
	AuthToken   string  `json:"auth_token"`
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	Identifier  string  `json:"identifier"`
	Network     Network `json:"network"`
	Description string  `json:"description,omitempty"`
}

type statusBody struct {
	AuthToken   string `json:"auth_token"`
	TxReference string `json:"tx_reference"`
}

type statusByIdentifierBody struct {
	AuthToken  string `json:"auth_token"`
	Identifier string `json:"identifier"`
}

type balanceBody struct {
	AuthToken string `json:"auth_token"`
}

type disburseBody struct {
	AuthToken   string  `json:"auth_token"`
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
	Network     Network `json:"network"`
	Reference   string  `json:"reference,omitempty"`
}

// InitiatePayment pushes a payment request to the customer's phone
func (c *Client) InitiatePayment(ctx context.Context, req TransactionRequest) (GatewayResponse, error) {
	if err := requireString("phone_number", req.PhoneNumber); err != nil {
		return nil, err
	}
	if err := requireAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := requireString("identifier", req.Identifier); err != nil {
		return nil, err
	}
	network, err := requireNetwork(req.Network)
	if err != nil {
		return nil, err
	}

	body := payBody{
		AuthToken:   c.cfg.AuthToken,
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Identifier:  req.Identifier,
		Network:     network,
		Description: req.Description,
	}

	return c.post(ctx, payEndpoint, body,
		zap.String("identifier", req.Identifier),
		zap.String("network", string(network)),
		zap.Float64("amount", req.Amount))
}

// CheckStatus fetches the status of a payment by gateway transaction reference
func (c *Client) CheckStatus(ctx context.Context, txReference string) (GatewayResponse, error) {
	if err := requireString("tx_reference", txReference); err != nil {
		return nil, err
	}

	body := statusBody{
		AuthToken:   c.cfg.AuthToken,
		TxReference: txReference,
	}

	return c.post(ctx, statusEndpoint, body, zap.String("tx_reference", txReference))
}

// CheckStatusByIdentifier fetches the status of a payment by the merchant identifier.
// It uses the v2 endpoint, which is not interchangeable with CheckStatus.
func (c *Client) CheckStatusByIdentifier(ctx context.Context, identifier string) (GatewayResponse, error) {
	if err := requireString("identifier", identifier); err != nil {
		return nil, err
	}

	body := statusByIdentifierBody{
		AuthToken:  c.cfg.AuthToken,
		Identifier: identifier,
	}

	return c.post(ctx, statusV2Endpoint, body, zap.String("identifier", identifier))
}

// CheckBalance fetches the merchant balance per network
func (c *Client) CheckBalance(ctx context.Context) (GatewayResponse, error) {
	return c.post(ctx, checkBalanceEndpoint, balanceBody{AuthToken: c.cfg.AuthToken})
}

// Disburse sends money to a mobile money account
func (c *Client) Disburse(ctx context.Context, req DisbursementRequest) (GatewayResponse, error) {
	if err := requireString("phone_number", req.PhoneNumber); err != nil {
		return nil, err
	}
	if err := requireAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := requireString("reason", req.Reason); err != nil {
		return nil, err
	}
	network, err := requireNetwork(req.Network)
	if err != nil {
		return nil, err
	}

	body := disburseBody{
		AuthToken:   c.cfg.AuthToken,
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Network:     network,
		Reference:   req.Reference,
	}

	return c.post(ctx, disbursementEndpoint, body,
		zap.String("reference", req.Reference),
		zap.String("network", string(network)),
		zap.Float64("amount", req.Amount))
}

// post sends one JSON request. Error statuses that carry a JSON object are
// returned as a normal result since they hold the gateway's own status codes.
func (c *Client) post(ctx context.Context, endpoint string, body interface{}, fields ...zap.Field) (GatewayResponse, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(endpoint)
	elapsed := time.Since(start)

	log := c.logger.With(append(fields,
		zap.String("endpoint", endpoint),
		zap.Duration("duration", elapsed))...)

	if err != nil {
		log.Error("paygate request failed", zap.Error(err))
		metrics.ObserveGatewayCall(endpoint, "unavailable", elapsed)
		return nil, &GatewayUnavailableError{Endpoint: endpoint, Err: err}
	}

	raw := resp.Body()
	if resp.IsError() {
		result, ok := decodeObject(raw)
		if ok && len(result) > 0 {
			log.Error("paygate api error",
				zap.Int("status_code", resp.StatusCode()),
				zap.ByteString("response_body", raw))
			metrics.ObserveGatewayCall(endpoint, "gateway_error", elapsed)
			return result, nil
		}

		log.Error("paygate api error without usable body",
			zap.Int("status_code", resp.StatusCode()),
			zap.ByteString("response_body", raw))
		metrics.ObserveGatewayCall(endpoint, "unavailable", elapsed)
		return nil, &GatewayUnavailableError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(resp.Status()),
		}
	}

	log.Info("paygate request completed", zap.Int("status_code", resp.StatusCode()))
	metrics.ObserveGatewayCall(endpoint, "ok", elapsed)

	result, ok := decodeObject(raw)
	if !ok {
		return GatewayResponse{}, nil
	}
	return result, nil
}

// decodeObject decodes a JSON object body. Anything else reports false.
func decodeObject(raw []byte) (GatewayResponse, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	var result GatewayResponse
	if err := json.Unmarshal(raw, &result); err != nil || result == nil {
		return nil, false
	}
	return result, true
}

func requireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field}
	}
	return nil
}

func requireAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return nil
}

func requireNetwork(value string) (Network, error) {
	if err := requireString("network", value); err != nil {
		return "", err
	}
	network, ok := ParseNetwork(value)
	if !ok {
		return "", &ValidationError{Field: "network", Reason: "must be FLOOZ or TMONEY"}
	}
	return network, nil
}
