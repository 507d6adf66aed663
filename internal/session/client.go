package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/roach88/cartwheel/internal/cart"
)

// Client consumes the Cart Service's authenticated cart endpoint:
//
//	POST {base}/cart  {"items": [...]}
//	→ {"items": [...]}   (the authoritative cart snapshot)
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Auth headers and
// retries are that client's concern, not this package's.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a cart service client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCart submits the local items as cart-creation intent and returns the
// server's authoritative item list.
func (c *Client) CreateCart(ctx context.Context, items []cart.LineItem) ([]cart.LineItem, error) {
	payload, err := json.Marshal(struct {
		Items []cart.LineItem `json:"items"`
	}{Items: items})
	if err != nil {
		return nil, fmt.Errorf("create cart: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create cart: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Items []cart.LineItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("create cart: decode: %w", err)
	}

	return body.Items, nil
}
