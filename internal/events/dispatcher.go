// Package events acts on verified payment webhooks and keeps a feed of
// recent payment outcomes
package events

import (
	"fmt"
	"log"

	"github.com/twillco/storefront/internal/payment"
)

// Result describes what the dispatcher did with an event
type Result struct {
	Handled bool    `json:"handled"`
	Message string  `json:"message,omitempty"`
	Record  *Record `json:"record,omitempty"`
}

// Dispatcher routes webhook events to handlers by type
type Dispatcher struct {
	feed *Feed
}

// NewDispatcher creates a dispatcher recording into feed
func NewDispatcher(feed *Feed) *Dispatcher {
	return &Dispatcher{feed: feed}
}

// Dispatch handles one event. It must only be called with events whose
// signature has already been verified.
func (d *Dispatcher) Dispatch(ev *payment.Event) *Result {
	switch ev.Type {
	case payment.EventSucceeded:
		return d.handleSucceeded(ev)
	case payment.EventFailed:
		return d.handleFailed(ev)
	default:
		log.Printf("Unhandled event type: %s", ev.Type)
		return &Result{
			Handled: false,
			Message: fmt.Sprintf("unhandled event type: %s", ev.Type),
		}
	}
}

func (d *Dispatcher) handleSucceeded(ev *payment.Event) *Result {
	if ev.Intent == nil {
		return &Result{Message: "event has no payment intent"}
	}

	pi := ev.Intent
	log.Printf("✅ Payment succeeded: %s", pi.ID)
	log.Printf("   Customer: %s", pi.Metadata[payment.MetaCustomerName])
	log.Printf("   Email: %s", pi.Metadata[payment.MetaCustomerEmail])

	rec := d.feed.Add(recordFrom(ev))
	return &Result{Handled: true, Message: "payment succeeded", Record: &rec}
}

func (d *Dispatcher) handleFailed(ev *payment.Event) *Result {
	if ev.Intent == nil {
		return &Result{Message: "event has no payment intent"}
	}

	log.Printf("❌ Payment failed: %s", ev.Intent.ID)

	rec := d.feed.Add(recordFrom(ev))
	return &Result{Handled: true, Message: "payment failed", Record: &rec}
}

func recordFrom(ev *payment.Event) Record {
	pi := ev.Intent
	return Record{
		EventID:  ev.ID,
		Type:     ev.Type,
		IntentID: pi.ID,
		Status:   pi.Status,
		Amount:   pi.Amount,
		Customer: pi.Metadata[payment.MetaCustomerName],
		Email:    pi.Metadata[payment.MetaCustomerEmail],
		Error:    pi.LastError,
	}
}
