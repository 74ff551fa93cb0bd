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

const DefaultBaseURL = "https://api.stripe.com/v1"

// Client talks to the Stripe REST API directly. Form-encoded requests,
// bearer auth, bounded timeout on every call.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	successURL    string
	cancelURL     string
	http          *http.Client
}

func NewClient(apiKey, webhookSecret string) *Client {
	return &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		successURL:    "https://willpowerfitness.com/welcome?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     "https://willpowerfitness.com/membership",
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at a test server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// CreateCustomer registers the customer and returns the cus_xxx id.
func (c *Client) CreateCustomer(ctx context.Context, input CreateCustomerInput) (string, error) {
	form := url.Values{}
	form.Set("email", input.Email)
	form.Set("name", input.Name)
	for k, v := range input.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var resp customerResponse
	if err := c.post(ctx, "/customers", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateSubscription starts an incomplete subscription and returns its
// id plus the payment-intent client secret the front end confirms with.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string) (*SubscriptionResult, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("items[0][price]", priceID)
	form.Set("payment_behavior", "default_incomplete")
	form.Set("payment_settings[save_default_payment_method]", "on_subscription")
	form.Add("expand[]", "latest_invoice.payment_intent")

	var resp subscriptionResponse
	if err := c.post(ctx, "/subscriptions", form, &resp); err != nil {
		return nil, err
	}
	return &SubscriptionResult{
		SubscriptionID: resp.ID,
		ClientSecret:   resp.LatestInvoice.PaymentIntent.ClientSecret,
	}, nil
}

// CreateCheckoutSession builds the hosted checkout page. The custom
// fields collect the welcome-shirt size and shipping address so the
// webhook can hand them to fulfillment.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("customer", input.CustomerID)
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", input.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)

	form.Set("custom_fields[0][key]", "tshirt_size")
	form.Set("custom_fields[0][type]", "dropdown")
	form.Set("custom_fields[0][label][type]", "custom")
	form.Set("custom_fields[0][label][custom]", "Welcome shirt size")
	for i, size := range []string{"S", "M", "L", "XL", "XXL"} {
		idx := strconv.Itoa(i)
		form.Set("custom_fields[0][dropdown][options]["+idx+"][label]", size)
		form.Set("custom_fields[0][dropdown][options]["+idx+"][value]", size)
	}

	form.Set("custom_fields[1][key]", "shipping_address")
	form.Set("custom_fields[1][type]", "text")
	form.Set("custom_fields[1][label][type]", "custom")
	form.Set("custom_fields[1][label][custom]", "Shipping address for your welcome shirt")
	form.Set("custom_fields[1][optional]", "true")

	var resp checkoutSessionResponse
	if err := c.post(ctx, "/checkout/sessions", form, &resp); err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: resp.ID, URL: resp.URL}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe error (status %d)", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("stripe decode failed: %w", err)
	}
	return nil
}
