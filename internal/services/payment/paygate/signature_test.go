package paygate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "secret123"

func TestSignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"tx_reference":"TXN123456","amount":1000}`)
	signature := ComputeSignature(payload, testWebhookSecret)

	assert.Len(t, signature, 64)
	assert.True(t, NewSignatureVerifier(testWebhookSecret, nil).Verify(payload, signature))
}

func TestSignatureIgnoresWhitespace(t *testing.T) {
	compact := []byte(`{"tx_reference":"TXN123456","amount":1000}`)
	pretty := []byte("{\n  \"tx_reference\": \"TXN123456\",\n  \"amount\": 1000\n}")

	signature := ComputeSignature(compact, testWebhookSecret)
	assert.True(t, NewSignatureVerifier(testWebhookSecret, nil).Verify(pretty, signature))
}

func TestSignatureIsOrderSensitive(t *testing.T) {
	signed := []byte(`{"tx_reference":"TXN123456","amount":1000}`)
	reordered := []byte(`{"amount":1000,"tx_reference":"TXN123456"}`)

	signature := ComputeSignature(signed, testWebhookSecret)
	assert.False(t, NewSignatureVerifier(testWebhookSecret, nil).Verify(reordered, signature))
}

func TestSignatureRejectsTampering(t *testing.T) {
	payload := []byte(`{"tx_reference":"TXN123456","amount":1000}`)
	signature := []byte(ComputeSignature(payload, testWebhookSecret))

	// flip one hex digit
	if signature[0] == 'a' {
		signature[0] = 'b'
	} else {
		signature[0] = 'a'
	}

	verifier := NewSignatureVerifier(testWebhookSecret, nil)
	assert.False(t, verifier.Verify(payload, string(signature)))
	assert.False(t, verifier.Verify([]byte(`{"tx_reference":"TXN123456","amount":1001}`),
		ComputeSignature(payload, testWebhookSecret)))
}

func TestSignatureFailsClosed(t *testing.T) {
	payload := []byte(`{"amount":1000}`)

	assert.False(t, NewSignatureVerifier("", nil).Verify(payload, ComputeSignature(payload, "")))
	assert.False(t, NewSignatureVerifier(testWebhookSecret, nil).Verify(payload, ""))
	assert.False(t, NewSignatureVerifier(testWebhookSecret, nil).Verify([]byte(`{broken`), "abc"))
}

func TestSignatureRoundTripNonJSON(t *testing.T) {
	payload := []byte("not json at all")
	signature := ComputeSignature(payload, testWebhookSecret)

	assert.True(t, NewSignatureVerifier(testWebhookSecret, nil).Verify(payload, signature))
}

func TestCanonicalPayload(t *testing.T) {
	out, err := CanonicalPayload([]byte(" { \"a\" : 1 , \"b\" : [ 1 , 2 ] } "))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[1,2]}`, string(out))

	_, err = CanonicalPayload([]byte(`{`))
	assert.Error(t, err)
}
