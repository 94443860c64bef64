// Package shopapi is the storefront's gateway to the backend REST API. It
// is the only package permitted to issue network calls: every capability is
// exposed as a typed operation on one of the sub-clients, with the bearer
// credential attached automatically. The client is a pure pass-through with
// credential injection; it does not retry, back off, or cache.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clovermart/storefront/internal/app/metrics"
	"github.com/clovermart/storefront/internal/credstore"
	"github.com/clovermart/storefront/pkg/logger"
)

const apiPrefix = "/api/v1"

// Config configures the gateway client.
type Config struct {
	// BaseURL is the backend origin, without the /api/v1 prefix.
	BaseURL string
	// Credentials persists the bearer token. Defaults to an in-memory
	// store when nil.
	Credentials credstore.Store
	// HTTPClient overrides the transport. Defaults to a client with
	// Timeout applied.
	HTTPClient *http.Client
	// Timeout applies to the default transport only.
	Timeout time.Duration
	Logger  *logger.Logger
}

// Client is the root gateway client. Obtain capability clients through the
// accessor methods.
type Client struct {
	apiURL     string
	httpClient *http.Client
	creds      credstore.Store
	log        *logger.Logger

	auth     *AuthClient
	catalog  *CatalogClient
	cart     *CartClient
	orders   *OrderClient
	payments *PaymentClient
	admin    *AdminClient
}

// New creates a gateway client for the backend at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	creds := cfg.Credentials
	if creds == nil {
		creds = credstore.NewMemoryStore()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("shopapi")
	}

	c := &Client{
		apiURL:     base + apiPrefix,
		httpClient: httpClient,
		creds:      creds,
		log:        log,
	}
	c.auth = &AuthClient{client: c}
	c.catalog = &CatalogClient{client: c}
	c.cart = &CartClient{client: c}
	c.orders = &OrderClient{client: c}
	c.payments = &PaymentClient{client: c}
	c.admin = &AdminClient{client: c}

	return c, nil
}

// Auth returns the authentication client.
func (c *Client) Auth() *AuthClient { return c.auth }

// Catalog returns the product catalog client.
func (c *Client) Catalog() *CatalogClient { return c.catalog }

// Cart returns the cart client.
func (c *Client) Cart() *CartClient { return c.cart }

// Orders returns the order client.
func (c *Client) Orders() *OrderClient { return c.orders }

// Payments returns the payment client.
func (c *Client) Payments() *PaymentClient { return c.payments }

// Admin returns the admin client.
func (c *Client) Admin() *AdminClient { return c.admin }

// Token returns the currently held bearer token, or "" when anonymous.
func (c *Client) Token() string {
	return c.creds.Token()
}

// setToken durably records a fresh bearer token. Any call issued after this
// returns carries the new token.
func (c *Client) setToken(token string) error {
	if err := c.creds.SetToken(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// clearToken drops the bearer token from durable storage.
func (c *Client) clearToken() error {
	if err := c.creds.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// =============================================================================
// Internal HTTP plumbing
// =============================================================================

// request performs one HTTP round trip against the backend. The current
// bearer token, when present, is attached to the request. The response body
// and status are returned as-is; callers decide how to treat non-2xx codes.
func (c *Client) request(ctx context.Context, capability, method, path string, payload interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordGatewayRequest(capability, method, 0, time.Since(start))
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	metrics.RecordGatewayRequest(capability, method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// do performs a request and decodes a 2xx JSON response into target (which
// may be nil to discard the body). Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, capability, method, path string, payload, target interface{}) error {
	body, status, err := c.request(ctx, capability, method, path, payload)
	if err != nil {
		return err
	}
	if status >= 400 {
		return parseError(body, status)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
