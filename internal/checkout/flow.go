// Package checkout drives a cart through payment: collect details, obtain a
// client secret from the server, confirm with the processor.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/twillco/storefront/internal/cart"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/pkg/catalog"
)

// State is a checkout step
type State int

const (
	Idle State = iota
	CollectingDetails
	AwaitingClientSecret
	ConfirmingPayment
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CollectingDetails:
		return "collecting_details"
	case AwaitingClientSecret:
		return "awaiting_client_secret"
	case ConfirmingPayment:
		return "confirming_payment"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Messages shown to the customer
const (
	MsgGenericError = "An error occurred. Please try again."
	MsgSuccess      = "Payment successful! Thank you for your order."
)

var (
	// ErrEmptyCart is returned when checkout starts with nothing in the cart
	ErrEmptyCart = errors.New("your cart is empty")
	// ErrMissingFields is returned when a required detail is blank
	ErrMissingFields = errors.New("please fill in all fields")
	// ErrNotAccepting is returned when Submit is called while submission is
	// disabled (not started, in flight, or already succeeded)
	ErrNotAccepting = errors.New("checkout is not accepting submissions")
	// ErrRequestFailed wraps network, parse and server failures
	ErrRequestFailed = errors.New("payment request failed")
	// ErrIncomplete is returned when confirmation ends in a status other than succeeded
	ErrIncomplete = errors.New("payment not completed")
)

// Details is the form captured in CollectingDetails
type Details struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Card    payment.Card
}

// Customer returns the contact block sent to the server
func (d Details) Customer() payment.Customer {
	return payment.Customer{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
	}
}

// Missing lists blank required fields
func (d Details) Missing() []string {
	var missing []string
	c := d.Customer()
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Phone == "" {
		missing = append(missing, "phone")
	}
	if c.Address == "" {
		missing = append(missing, "address")
	}
	return missing
}

// OrderItem is a cart line as sent to the server
type OrderItem struct {
	Product  catalog.ProductType `json:"product"`
	Color    string              `json:"color"`
	Size     string              `json:"size"`
	Quantity int                 `json:"quantity"`
	Price    catalog.Cents       `json:"price"`
	Total    catalog.Cents       `json:"total"`
}

// OrderRequest is the body of POST /create-payment-intent
type OrderRequest struct {
	Amount   catalog.Cents    `json:"amount"`
	Customer payment.Customer `json:"customer"`
	Items    []OrderItem      `json:"items"`
}

// NewOrderRequest builds the request for items; amount is the sum of totals
func NewOrderRequest(items []cart.Item, customer payment.Customer) OrderRequest {
	req := OrderRequest{Customer: customer, Items: make([]OrderItem, 0, len(items))}
	for _, it := range items {
		req.Items = append(req.Items, OrderItem{
			Product:  it.Product,
			Color:    it.Color,
			Size:     it.Size,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.Total,
		})
		req.Amount += it.Total
	}
	return req
}

// IntentRequester asks the server for a client secret
type IntentRequester interface {
	CreatePaymentIntent(ctx context.Context, req OrderRequest) (string, error)
}

// Flow is the checkout state machine for one session
type Flow struct {
	cart      *cart.Cart
	requester IntentRequester
	confirmer payment.Confirmer

	state     State
	message   string
	details   Details
	intent    *payment.Intent
	observers []func(from, to State)

	mu sync.Mutex
}

// New creates a flow in Idle
func New(c *cart.Cart, requester IntentRequester, confirmer payment.Confirmer) *Flow {
	return &Flow{
		cart:      c,
		requester: requester,
		confirmer: confirmer,
		state:     Idle,
	}
}

// OnTransition registers fn to be called after every state change
func (f *Flow) OnTransition(fn func(from, to State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// State returns the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the last user-facing status or error text
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Details returns the form as last submitted
func (f *Flow) Details() Details {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details
}

// Intent is the confirmed intent, if any
func (f *Flow) Intent() *payment.Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intent
}

// SubmitEnabled reports whether the pay control should be enabled
func (f *Flow) SubmitEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == CollectingDetails || f.state == Failed
}

// Begin opens checkout. It is valid from Idle and from the terminal states.
func (f *Flow) Begin() error {
	if f.cart.Len() == 0 {
		return ErrEmptyCart
	}

	f.mu.Lock()
	switch f.state {
	case Idle, Succeeded, Failed:
	default:
		f.mu.Unlock()
		return ErrNotAccepting
	}
	f.message = ""
	f.intent = nil
	f.mu.Unlock()

	f.transition(CollectingDetails, "")
	return nil
}

// Cancel closes checkout without paying
func (f *Flow) Cancel() {
	f.mu.Lock()
	st := f.state
	f.mu.Unlock()

	if st == CollectingDetails || st == Failed {
		f.transition(Idle, "")
	}
}

// Submit runs the payment with details. User input errors leave the state
// unchanged; request and confirmation failures move to Failed, from which
// Submit may be called again.
func (f *Flow) Submit(ctx context.Context, details Details) error {
	f.mu.Lock()
	if f.state != CollectingDetails && f.state != Failed {
		f.mu.Unlock()
		return ErrNotAccepting
	}
	if missing := details.Missing(); len(missing) > 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	items := f.cart.List()
	if len(items) == 0 {
		f.mu.Unlock()
		return ErrEmptyCart
	}
	f.details = details

	// Claim the flow before releasing the lock so a second Submit is refused
	from := f.state
	f.state = AwaitingClientSecret
	f.message = "Processing..."
	f.mu.Unlock()
	f.notify(from, AwaitingClientSecret)

	req := NewOrderRequest(items, details.Customer())
	secret, err := f.requester.CreatePaymentIntent(ctx, req)
	if err != nil {
		f.transition(Failed, MsgGenericError)
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	f.transition(ConfirmingPayment, "Confirming payment...")

	intent, err := f.confirmer.Confirm(ctx, secret, details.Card)
	if err != nil {
		var pe *payment.ProcessorError
		if errors.As(err, &pe) {
			f.transition(Failed, pe.Message)
			return err
		}
		f.transition(Failed, MsgGenericError)
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if intent.Status != payment.StatusSucceeded {
		f.transition(Failed, fmt.Sprintf("Payment status: %s. Please try again.", intent.Status))
		return fmt.Errorf("%w: status %s", ErrIncomplete, intent.Status)
	}

	f.cart.Clear()

	f.mu.Lock()
	f.intent = intent
	f.details = Details{}
	f.mu.Unlock()

	f.transition(Succeeded, MsgSuccess)
	return nil
}

func (f *Flow) transition(to State, message string) {
	f.mu.Lock()
	from := f.state
	f.state = to
	f.message = message
	f.mu.Unlock()

	f.notify(from, to)
}

func (f *Flow) notify(from, to State) {
	f.mu.Lock()
	observers := make([]func(from, to State), len(f.observers))
	copy(observers, f.observers)
	f.mu.Unlock()

	for _, fn := range observers {
		fn(from, to)
	}
}
