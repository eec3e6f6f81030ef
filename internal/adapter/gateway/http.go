package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	gatewayDomain "creator-marketplace/internal/domain/gateway"

	"github.com/shopspring/decimal"
)

// HTTPClient talks to a JSON REST payment processor:
//
//	POST {base}/v1/charges  {"amount","payment_method"}
//	POST {base}/v1/payouts  {"amount","method","details"}
//
// 2xx carries {"id","status","reason"}; 402 and 422 are declines; anything
// else is an unknown outcome and returned as an error.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPClient leaves timeouts to the caller's context.
func NewHTTPClient(baseURL, apiKey string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type chargeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

type payoutRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Details map[string]any  `json:"details,omitempty"`
}

type processorResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (c *HTTPClient) Charge(ctx context.Context, amount decimal.Decimal, paymentMethodRef string) (gatewayDomain.Result, error) {
	return c.post(ctx, "/v1/charges", chargeRequest{Amount: amount, PaymentMethod: paymentMethodRef})
}

func (c *HTTPClient) Payout(ctx context.Context, amount decimal.Decimal, method string, details map[string]any) (gatewayDomain.Result, error) {
	return c.post(ctx, "/v1/payouts", payoutRequest{Amount: amount, Method: method, Details: details})
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) (gatewayDomain.Result, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return gatewayDomain.Result{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return gatewayDomain.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if key, ok := gatewayDomain.IdempotencyKey(ctx); ok {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return gatewayDomain.Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var out processorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}

	switch {
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		reason := out.Reason
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return gatewayDomain.Result{Reason: reason}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return gatewayDomain.Result{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	switch out.Status {
	case "succeeded", "paid", "completed":
		return gatewayDomain.Result{Success: true, TransactionRef: out.ID}, nil
	case "declined", "failed":
		return gatewayDomain.Result{TransactionRef: out.ID, Reason: out.Reason}, nil
	default:
		return gatewayDomain.Result{}, fmt.Errorf("invalid status in response: %q", out.Status)
	}
}
