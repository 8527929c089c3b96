package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how old a webhook delivery may be before
// it is rejected as a possible replay.
const DefaultSignatureTolerance = 5 * time.Minute

// StripeEvent is the subset of a Stripe webhook payload the reconciliation
// gateway needs: the event type and the payment-intent id used as the
// booking reference.
type StripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyStripeSignature checks a `t=<unix>,v1=<hex>` signature header
// against the raw request body. The signed payload is "<t>.<body>" and the
// MAC is HMAC-SHA256 under the webhook secret. Comparison is constant-time;
// deliveries older than tolerance are rejected even with a valid MAC.
func VerifyStripeSignature(body []byte, sigHeader, secret string, tolerance time.Duration) error {
	if sigHeader == "" {
		return fmt.Errorf("missing signature header")
	}

	var timestamp int64
	var candidates []string
	for _, part := range strings.Split(sigHeader, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			ts, err := strconv.ParseInt(pair[1], 10, 64)
			if err != nil {
				return fmt.Errorf("malformed signature timestamp")
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, pair[1])
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return fmt.Errorf("signature timestamp outside tolerance")
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return fmt.Errorf("no matching v1 signature")
}

// SignStripePayload produces the signature header for a payload. Used by the
// webhook tests; a real delivery is signed by Stripe.
func SignStripePayload(body []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// ParseStripeEvent decodes a verified webhook body. Succeeded is true only
// for a payment_intent.succeeded event.
func ParseStripeEvent(body []byte) (*StripeEvent, error) {
	var event StripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("cannot parse stripe event: %v", err)
	}
	if event.Data.Object.ID == "" {
		return nil, fmt.Errorf("stripe event missing payment intent id")
	}
	return &event, nil
}

func (e *StripeEvent) Succeeded() bool {
	return e.Type == "payment_intent.succeeded"
}

func (e *StripeEvent) Reference() string {
	return e.Data.Object.ID
}
