package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func TestVerifyStripeSignature_ValidSignature(t *testing.T) {
	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_abc123","status":"succeeded"}}}`)
	header := SignStripePayload(body, testWebhookSecret, time.Now())

	err := VerifyStripeSignature(body, header, testWebhookSecret, DefaultSignatureTolerance)
	assert.NoError(t, err)
}

func TestVerifyStripeSignature_TamperedBody(t *testing.T) {
	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_abc123"}}}`)
	header := SignStripePayload(body, testWebhookSecret, time.Now())

	tampered := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_evil999"}}}`)
	err := VerifyStripeSignature(tampered, header, testWebhookSecret, DefaultSignatureTolerance)
	assert.Error(t, err)
}

func TestVerifyStripeSignature_WrongSecret(t *testing.T) {
	body := []byte(`{"type":"payment_intent.succeeded"}`)
	header := SignStripePayload(body, "whsec_other", time.Now())

	err := VerifyStripeSignature(body, header, testWebhookSecret, DefaultSignatureTolerance)
	assert.Error(t, err)
}

func TestVerifyStripeSignature_StaleTimestamp(t *testing.T) {
	body := []byte(`{"type":"payment_intent.succeeded"}`)
	header := SignStripePayload(body, testWebhookSecret, time.Now().Add(-10*time.Minute))

	err := VerifyStripeSignature(body, header, testWebhookSecret, DefaultSignatureTolerance)
	assert.Error(t, err)
}

func TestVerifyStripeSignature_MalformedHeaders(t *testing.T) {
	body := []byte(`{}`)

	for _, header := range []string{"", "v1=deadbeef", "t=notanumber,v1=deadbeef", "t=12345"} {
		err := VerifyStripeSignature(body, header, testWebhookSecret, DefaultSignatureTolerance)
		assert.Error(t, err, "header %q should be rejected", header)
	}
}

func TestParseStripeEvent(t *testing.T) {
	body := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_abc123","status":"succeeded"}}}`)

	event, err := ParseStripeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "pi_abc123", event.Reference())
	assert.True(t, event.Succeeded())
}

func TestParseStripeEvent_FailureEvent(t *testing.T) {
	body := []byte(`{"type":"payment_intent.payment_failed","data":{"object":{"id":"pi_abc123","status":"requires_payment_method"}}}`)

	event, err := ParseStripeEvent(body)
	require.NoError(t, err)
	assert.False(t, event.Succeeded())
}

func TestParseStripeEvent_MissingReference(t *testing.T) {
	_, err := ParseStripeEvent([]byte(`{"type":"payment_intent.succeeded","data":{"object":{}}}`))
	assert.Error(t, err)

	_, err = ParseStripeEvent([]byte(`not json`))
	assert.Error(t, err)
}
