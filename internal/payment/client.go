// Package payment provides the client for the external payment verification
// endpoint.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

// ErrNotConfigured is returned when no verifier address was set.
var ErrNotConfigured = errors.New("payment verifier not configured")

// StatusError reports a non-success response from the verifier.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("verification failed with status %d", e.StatusCode)
}

// VerifyRequest is the body sent to the verification endpoint. The field
// names follow the payment provider's contract.
type VerifyRequest struct {
	TxRef     string                `json:"tx_ref"`
	TxID      string                `json:"transaction_id"`
	CartItems []model.CartItem      `json:"cartItems"`
	Delivery  model.DeliveryDetails `json:"deliveryDetails"`
	UserID    *int64                `json:"userId,omitempty"`
}

// VerifyResponse is the verifier's success payload.
type VerifyResponse struct {
	OrderID string `json:"orderId"`
}

// Client encapsulates HTTP interaction with the payment verifier.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a verification client for the given address. Transient
// failures and 5xx responses are retried a few times before giving up.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc.StandardClient(),
	}
}

// VerifyPayment asks the verifier to confirm a transaction and record the
// order on its side. A nil error means the verifier resolved an order id.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		base+"/api/verify-payment", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var result VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.OrderID == "" {
		return nil, fmt.Errorf("verifier returned no order id")
	}

	return &result, nil
}
