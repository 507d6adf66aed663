package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client consumes the Pricing Service's per-product discount endpoint:
//
//	GET {base}/products/discounted-price/{productId}
//	→ {"discountPercentage": 12.5}
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom
// timeouts). Retry and auth behavior belong to that client, not here.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a pricing client for the given service base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discount returns the current discount percentage for a product.
// Any non-success response is an error; the reconciler treats it as
// "no change" for that product.
func (c *Client) Discount(ctx context.Context, productID string) (float64, error) {
	endpoint := fmt.Sprintf("%s/products/discounted-price/%s", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("discount %s: %w", productID, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("discount %s: %w", productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("discount %s: unexpected status %d", productID, resp.StatusCode)
	}

	var body struct {
		DiscountPercentage float64 `json:"discountPercentage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("discount %s: decode: %w", productID, err)
	}

	return body.DiscountPercentage, nil
}
