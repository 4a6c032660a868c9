package paygate

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/utils"
)

// SignatureHeader carries the hex HMAC-SHA256 of the webhook body
const SignatureHeader = "X-PayGate-Signature"

// CanonicalPayload returns the serialization the signature is computed over:
// the JSON body as received with insignificant whitespace removed. Key order,
// number formatting and string escapes are kept, so a sender that serializes
// differently from the bytes it transmits will not verify.
func CanonicalPayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ComputeSignature returns the hex HMAC-SHA256 of the canonical payload keyed
// by secret. Payloads that are not valid JSON are signed as is.
func ComputeSignature(payload []byte, secret string) string {
	return utils.SignHMAC(signedBytes(payload), secret)
}

func signedBytes(payload []byte) []byte {
	if canonical, err := CanonicalPayload(payload); err == nil {
		return canonical
	}
	return payload
}

// SignatureVerifier checks webhook signatures against the shared secret
type SignatureVerifier struct {
	secret string
	logger *zap.Logger
}

// NewSignatureVerifier creates a verifier. An empty secret makes every
// verification fail.
func NewSignatureVerifier(secret string, logger *zap.Logger) *SignatureVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignatureVerifier{secret: secret, logger: logger}
}

// Verify reports whether signature matches the payload. It fails closed.
func (v *SignatureVerifier) Verify(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	if v.secret == "" {
		v.logger.Warn("webhook secret not configured")
		return false
	}

	return utils.VerifyHMAC(signedBytes(payload), signature, v.secret)
}
