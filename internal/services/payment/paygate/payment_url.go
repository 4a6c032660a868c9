package paygate

import (
	"net/url"
	"strconv"
	"strings"
)

// GeneratePaymentURL builds the hosted payment page URL the customer is
// redirected to. The auth token travels as the "token" query parameter.
func (c *Client) GeneratePaymentURL(params PaymentPageParams) (string, error) {
	if err := requireAmount(params.Amount); err != nil {
		return "", err
	}
	if err := requireString("identifier", params.Identifier); err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("token", c.cfg.AuthToken)
	query.Set("amount", strconv.FormatFloat(params.Amount, 'f', -1, 64))
	query.Set("identifier", params.Identifier)

	if params.Description != "" {
		query.Set("description", params.Description)
	}
	if params.Phone != "" {
		query.Set("phone", params.Phone)
	}
	if params.Network != "" {
		query.Set("network", params.Network)
	}

	// Without a redirect target the gateway uses the merchant default
	redirect := params.SuccessURL
	if redirect == "" {
		redirect = params.ReturnURL
	}
	if redirect != "" {
		query.Set("url", redirect)
	}

	return c.cfg.PaymentPageURL + "?" + query.Encode(), nil
}

// CallbackURL is the webhook URL to register with PayGate Global
func (c *Client) CallbackURL() string {
	if c.cfg.CallbackURL != "" {
		return c.cfg.CallbackURL
	}
	return strings.TrimRight(c.cfg.PublicURL, "/") + "/" + strings.Trim(c.cfg.WebhookRoute, "/")
}
