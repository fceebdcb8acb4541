// Package stripe is a minimal client for the parts of the Stripe API this
// service uses: creating payment intents and verifying webhook signatures.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// Intent is a processor-side payment intent.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreateIntentParams are the parameters for creating a payment intent.
type CreateIntentParams struct {
	// AmountMinor is the charge amount in the currency's minor units.
	AmountMinor int64
	// Currency is the lowercase ISO currency code.
	Currency string
	// Metadata is attached to the intent and echoed back on webhook events.
	Metadata map[string]string
}

// Client calls the Stripe API. All calls are bounded by the configured
// timeout so a stalled processor surfaces as an error instead of hanging
// the request.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client authenticated with the given secret key.
// baseURL may be empty to use the production API.
func NewClient(secretKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		secretKey:  secretKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateIntent creates a payment intent at the processor.
func (c *Client) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountMinor, 10))
	form.Set("currency", params.Currency)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe: create intent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("stripe: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe: create intent: %s", apiErrorMessage(resp.StatusCode, body))
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("stripe: decode intent: %w", err)
	}
	return &intent, nil
}

// apiErrorMessage extracts the error message from a Stripe error body.
func apiErrorMessage(status int, body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("status %d: %s", status, apiErr.Error.Message)
	}
	return fmt.Sprintf("status %d", status)
}
