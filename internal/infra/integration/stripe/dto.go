package stripe

import "encoding/json"

// Event types the workflow reacts to.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	EventInvoicePaymentFailed     = "invoice.payment_failed"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

type CreateCustomerInput struct {
	Email    string
	Name     string
	Metadata map[string]string
}

type CheckoutSessionInput struct {
	CustomerID string
	Email      string
	PriceID    string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type SubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret"`
}

// Event is a verified webhook event. Data.Object stays raw until the
// handler knows which shape to decode.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

type EventData struct {
	Object json.RawMessage `json:"object"`
}

type CheckoutSessionObject struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	Mode            string `json:"mode"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details"`
	CustomFields []CustomField `json:"custom_fields"`
}

type CustomField struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Dropdown struct {
		Value string `json:"value"`
	} `json:"dropdown"`
	Text struct {
		Value string `json:"value"`
	} `json:"text"`
}

type InvoiceObject struct {
	ID            string `json:"id"`
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	AttemptCount  int    `json:"attempt_count"`
}

type customerResponse struct {
	ID string `json:"id"`
}

type subscriptionResponse struct {
	ID            string `json:"id"`
	LatestInvoice struct {
		PaymentIntent struct {
			ClientSecret string `json:"client_secret"`
		} `json:"payment_intent"`
	} `json:"latest_invoice"`
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
