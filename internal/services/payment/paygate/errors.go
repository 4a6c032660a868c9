package paygate

import (
	"fmt"

	"github.com/revaspay/paygate/internal/config"
)

// ErrMissingAuthToken is returned by NewClient when no auth token is configured
var ErrMissingAuthToken = config.ErrMissingAuthToken

// ValidationError reports a missing or invalid request parameter.
// No HTTP call is made when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("paygate: parameter '%s' %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("paygate: parameter '%s' is required", e.Field)
}

// GatewayUnavailableError reports a call that produced no decodable response:
// a transport failure, a timeout, or an error status with an unusable body.
type GatewayUnavailableError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *GatewayUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("paygate: %s unavailable: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("paygate: %s unavailable: %v", e.Endpoint, e.Err)
}

func (e *GatewayUnavailableError) Unwrap() error {
	return e.Err
}
