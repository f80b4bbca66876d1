package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// ChargeRequest is one charge attempt against the payment provider.
// PaymentID doubles as the provider-side idempotency token so retries of
// the same payment can never double-charge.
type ChargeRequest struct {
	PaymentID string
	Method    string
	Amount    float64
	Currency  string
}

// Provider is the payment provider boundary.
type Provider interface {
	// Charge submits a charge and returns the provider reference.
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// StubProvider simulates a provider for local runs and tests. It always
// approves and mints references in the provider's format.
type StubProvider struct{}

// NewStubProvider creates a new StubProvider.
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// Charge approves the charge with a fresh reference.
func (p *StubProvider) Charge(_ context.Context, _ ChargeRequest) (string, error) {
	return newProviderRef(), nil
}

func newProviderRef() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return "PSP-" + strings.ToUpper(hex.EncodeToString(buf))
}

// HTTPProvider talks to a real provider over HTTPS. Calls run through a
// circuit breaker so a provider outage fails fast instead of tying up
// request workers.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPProvider creates a new HTTPProvider.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "psp",
			MaxRequests: 3,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type chargePayload struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Method   string  `json:"method"`
}

type chargeResult struct {
	Ref string `json:"ref"`
}

// Charge POSTs the charge with the payment's idempotency token.
func (p *HTTPProvider) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	ref, err := p.breaker.Execute(func() (any, error) {
		return p.doCharge(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return ref.(string), nil
}

func (p *HTTPProvider) doCharge(ctx context.Context, req ChargeRequest) (string, error) {
	body, err := json.Marshal(chargePayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.PaymentID)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("psp charge failed: status %d", resp.StatusCode)
	}

	var result chargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Ref == "" {
		return "", fmt.Errorf("psp charge failed: empty reference")
	}

	return result.Ref, nil
}
