// Package plaid is a thin client for the banking provider's REST API.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout   = 30 * time.Second
	accountsPath     = "/accounts/get"
	syncPath         = "/transactions/sync"
	institutionsPath = "/institutions/get_by_id"

	// maxResponseBytes caps how much of a provider response is read
	maxResponseBytes = 10 << 20
)

var environments = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

var providerTracer = otel.Tracer("horizon/plaid")

// Config holds the credentials and environment for the provider API
type Config struct {
	ClientID    string
	Secret      string
	Environment string
	Timeout     time.Duration
}

// Client handles communication with the provider API
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new provider API client
func NewClient(cfg Config) (*Client, error) {
	baseURL, ok := environments[cfg.Environment]
	if !ok {
		return nil, fmt.Errorf("unknown provider environment %q", cfg.Environment)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:  baseURL,
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
	}, nil
}

type accountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type syncRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
	Cursor      string `json:"cursor,omitempty"`
}

type institutionRequest struct {
	ClientID      string             `json:"client_id"`
	Secret        string             `json:"secret"`
	InstitutionID string             `json:"institution_id"`
	CountryCodes  []string           `json:"country_codes"`
	Options       institutionOptions `json:"options"`
}

type institutionOptions struct {
	IncludeOptionalMetadata bool `json:"include_optional_metadata"`
}

// GetAccounts fetches the accounts and item metadata for an access token
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	var resp AccountsResponse
	err := c.post(ctx, accountsPath, accountsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncTransactions fetches one page of the incremental transaction feed.
// An empty cursor starts from the beginning of the item's history.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResponse, error) {
	var resp SyncResponse
	err := c.post(ctx, syncPath, syncRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		Cursor:      cursor,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetInstitution fetches display metadata for an institution
func (c *Client) GetInstitution(ctx context.Context, institutionID string, countryCodes []string) (*InstitutionResponse, error) {
	var resp InstitutionResponse
	err := c.post(ctx, institutionsPath, institutionRequest{
		ClientID:      c.clientID,
		Secret:        c.secret,
		InstitutionID: institutionID,
		CountryCodes:  countryCodes,
		Options:       institutionOptions{IncludeOptionalMetadata: true},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON request and decodes either the success body into out or
// the error body into an *APIError.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	ctx, span := providerTracer.Start(ctx, "plaid"+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := c.do(ctx, path, payload, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apiErr, ok := err.(*APIError); ok {
			span.SetAttributes(attribute.String("plaid.error_code", apiErr.ErrorCode))
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(respBody) > maxResponseBytes {
		return fmt.Errorf("response from %s exceeds %d bytes", path, maxResponseBytes)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.ErrorCode == "" {
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
