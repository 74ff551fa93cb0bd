package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.printful.com"

// Client places welcome-shirt orders. Two-phase: CreateWelcomeShirtOrder
// makes a draft, ConfirmOrder submits it for production — a dry run can
// create without ever shipping.
type Client struct {
	baseURL   string
	apiKey    string
	variantID int
	http      *http.Client
}

func NewClient(apiKey string, variantID int) *Client {
	return &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		variantID: variantID,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Size offsets from the base (M) variant in the default catalog product.
var sizeOffsets = map[string]int{
	"S": -1, "M": 0, "L": 1, "XL": 2, "XXL": 3,
}

func (c *Client) variantFor(size string) int {
	offset, ok := sizeOffsets[size]
	if !ok {
		return c.variantID // default M
	}
	return c.variantID + offset
}

// CreateWelcomeShirtOrder creates a draft order for the free shirt and
// returns the Printful order id.
func (c *Client) CreateWelcomeShirtOrder(ctx context.Context, recipient Recipient, size string) (int64, error) {
	order := orderRequest{
		Recipient:  recipient,
		ExternalID: fmt.Sprintf("willpower_%s_%d", recipient.Name, time.Now().Unix()),
		Shipping:   "STANDARD",
		Items: []orderItem{{
			VariantID:   c.variantFor(size),
			Quantity:    1,
			RetailPrice: "0.00", // free welcome shirt
		}},
		PackingSlip: packingSlip{
			Message: "Welcome to WillPower Fitness! This complimentary t-shirt is our way of saying thank you for joining. Wear it with pride as you crush your goals! 💪",
		},
	}

	var resp orderResponse
	if err := c.post(ctx, "/orders", order, &resp); err != nil {
		return 0, err
	}
	return resp.Result.ID, nil
}

// ConfirmOrder moves a draft into production.
func (c *Client) ConfirmOrder(ctx context.Context, orderID int64) error {
	var resp orderResponse
	return c.post(ctx, fmt.Sprintf("/orders/%d/confirm", orderID), nil, &resp)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("printful marshal failed: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("printful request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("printful error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("printful error (status %d)", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
