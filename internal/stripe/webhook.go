package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook event types this service acts on. Anything else is unrecognized
// and acknowledged without effect.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// DefaultTolerance is how far a webhook timestamp may drift from now
// before the signature is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

var (
	// ErrInvalidSignature is returned when the signature header is absent,
	// malformed, or does not match the payload.
	ErrInvalidSignature = errors.New("stripe: invalid webhook signature")

	// ErrTimestampTooOld is returned when the signed timestamp is outside
	// the replay tolerance window.
	ErrTimestampTooOld = errors.New("stripe: webhook timestamp outside tolerance")
)

// Event is a verified webhook event.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// IntentID returns the payment intent id the event refers to.
func (e *Event) IntentID() string {
	return e.Data.Object.ID
}

// WebhookVerifier verifies Stripe-Signature headers against a shared
// endpoint secret and parses the payload into a typed event. Verification
// happens before any parsing: unverified payloads are untrusted input.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
	// now is replaceable for tests.
	now func() time.Time
}

// NewWebhookVerifier creates a verifier for the given endpoint secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, tolerance: DefaultTolerance, now: time.Now}
}

// Verify checks the signature header against the raw payload and, on
// success, returns the parsed event. It fails closed on any header the
// secret does not account for.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if v.tolerance > 0 {
		drift := v.now().Sub(time.Unix(timestamp, 0))
		if drift > v.tolerance || drift < -v.tolerance {
			return nil, ErrTimestampTooOld
		}
	}

	expected := computeSignature(timestamp, payload, v.secret)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			matched = true
		}
	}
	if !matched {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("stripe: parse event: %w", err)
	}
	return &event, nil
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]" into its
// timestamp and decoded v1 signatures.
func parseSignatureHeader(header string) (int64, [][]byte, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignature
	}

	var timestamp int64 = -1
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue // ignore undecodable signatures, another v1 may match
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

// computeSignature returns the HMAC-SHA256 of "<timestamp>.<payload>".
func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignPayload produces a Stripe-Signature header value for the payload.
// Used by tests and local tooling to emit verifiable events.
func SignPayload(timestamp time.Time, payload []byte, secret string) string {
	sig := computeSignature(timestamp.Unix(), payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", timestamp.Unix(), hex.EncodeToString(sig))
}
