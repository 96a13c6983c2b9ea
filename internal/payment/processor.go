// Package payment wraps the payment processor: intent creation, status
// lookup, webhook verification and client-side confirmation.
package payment

import (
	"context"
	"errors"

	"github.com/twillco/storefront/pkg/catalog"
)

// Event types the webhook handler acts on
const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

// Intent status reported on successful confirmation
const StatusSucceeded = "succeeded"

// Metadata keys written on every intent
const (
	MetaCustomerName    = "customerName"
	MetaCustomerEmail   = "customerEmail"
	MetaCustomerPhone   = "customerPhone"
	MetaShippingAddress = "shippingAddress"
	MetaItemCount       = "itemCount"
	MetaItems           = "items"
)

var (
	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	// ErrNotConfigured is returned when no API key was provided
	ErrNotConfigured = errors.New("payment processor is not configured")
)

// Customer is the contact and shipping block collected at checkout
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// IntentRequest describes a payment intent to create
type IntentRequest struct {
	Amount       catalog.Cents
	Currency     string
	Customer     Customer
	ItemCount    int
	ItemsSummary string
	Description  string
}

// Intent is the processor's record of an attempted charge
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"-"`
	Status       string            `json:"status"`
	Amount       catalog.Cents     `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
	LastError    string            `json:"lastError,omitempty"`
}

// Event is a verified webhook notification
type Event struct {
	ID     string
	Type   string
	Intent *Intent // nil for non payment_intent events
}

// Processor is the server-side view of the payment processor
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// ParseWebhook verifies signature over payload and decodes the event.
	// It returns ErrInvalidSignature when verification fails.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// Card is the payment method handed to confirmation
type Card struct {
	// PaymentMethod is a processor payment-method id, e.g. "pm_card_visa"
	// in test mode
	PaymentMethod string
}

// Confirmer is the client-side confirmation call
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret string, card Card) (*Intent, error)
}

// ProcessorError is an error reported by the processor itself (a declined
// card, an invalid payment method) whose message is safe to show the user
type ProcessorError struct {
	Code    string
	Message string
}

func (e *ProcessorError) Error() string {
	return e.Message
}
