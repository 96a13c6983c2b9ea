package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/twillco/storefront/pkg/catalog"
)

// StripeProcessor implements Processor against the Stripe API
type StripeProcessor struct {
	sc            *client.API
	configured    bool
	webhookSecret string
}

// NewStripe creates a processor. An empty secret key is accepted so the
// server can start; calls then fail at request time.
func NewStripe(secretKey, webhookSecret string) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProcessor{
		sc:            sc,
		configured:    secretKey != "",
		webhookSecret: webhookSecret,
	}
}

// CreateIntent creates a payment intent with the customer block as metadata
func (p *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if !p.configured {
		return nil, ErrNotConfigured
	}

	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(int64(req.Amount)),
		Currency:    stripe.String(currency),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	for k, v := range Metadata(req) {
		params.AddMetadata(k, v)
	}

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, stripeError(err)
	}

	return fromStripe(pi), nil
}

// GetIntent retrieves a payment intent by id
func (p *StripeProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if !p.configured {
		return nil, ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, stripeError(err)
	}

	return fromStripe(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func (p *StripeProcessor) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return ParseStripeWebhook(payload, signature, p.webhookSecret)
}

// ParseStripeWebhook verifies and decodes a Stripe event with secret. An
// empty secret rejects every event.
func ParseStripeWebhook(payload []byte, signature, secret string) (*Event, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := &Event{ID: ev.ID, Type: string(ev.Type)}

	if strings.HasPrefix(event.Type, "payment_intent.") && ev.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		event.Intent = fromStripe(&pi)
	}

	return event, nil
}

// Metadata is the metadata block attached to an intent
func Metadata(req IntentRequest) map[string]string {
	md := map[string]string{
		MetaCustomerName:    req.Customer.Name,
		MetaCustomerEmail:   req.Customer.Email,
		MetaCustomerPhone:   req.Customer.Phone,
		MetaShippingAddress: req.Customer.Address,
		MetaItemCount:       strconv.Itoa(req.ItemCount),
	}
	if req.ItemsSummary != "" {
		md[MetaItems] = req.ItemsSummary
	}
	return md
}

// Description is the intent description for an order of n items
func Description(n int) string {
	return fmt.Sprintf("Twill T-Shirt Co - Custom Order (%d item(s))", n)
}

// StripeConfirmer confirms intents from the client with a publishable key
type StripeConfirmer struct {
	sc *client.API
}

// NewStripeConfirmer creates a confirmer using a publishable key
func NewStripeConfirmer(publishableKey string) *StripeConfirmer {
	sc := &client.API{}
	sc.Init(publishableKey, nil)
	return &StripeConfirmer{sc: sc}
}

// Confirm confirms the intent behind clientSecret with card. Errors the
// processor reports about the payment come back as *ProcessorError.
func (c *StripeConfirmer) Confirm(ctx context.Context, clientSecret string, card Card) (*Intent, error) {
	id, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(card.PaymentMethod),
	}
	params.Context = ctx
	params.AddExtra("client_secret", clientSecret)

	pi, err := c.sc.PaymentIntents.Confirm(id, params)
	if err != nil {
		return nil, stripeError(err)
	}

	return fromStripe(pi), nil
}

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc"
func IntentIDFromSecret(clientSecret string) (string, error) {
	i := strings.Index(clientSecret, "_secret_")
	if i <= 0 {
		return "", fmt.Errorf("malformed client secret")
	}
	return clientSecret[:i], nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	intent := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       catalog.Cents(pi.Amount),
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
	if intent.Metadata == nil {
		intent.Metadata = map[string]string{}
	}
	if pi.LastPaymentError != nil {
		intent.LastError = pi.LastPaymentError.Msg
	}
	return intent
}

// stripeError turns card and request errors into *ProcessorError and leaves
// transport errors as they are
func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		switch se.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return &ProcessorError{Code: string(se.Code), Message: se.Msg}
		}
	}
	return err
}
