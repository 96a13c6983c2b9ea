package events

import (
	"testing"
	"time"

	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/pkg/catalog"
)

func succeededEvent(id string, amount int64) *payment.Event {
	return &payment.Event{
		ID:   "evt_" + id,
		Type: payment.EventSucceeded,
		Intent: &payment.Intent{
			ID:     id,
			Status: "succeeded",
			Amount: catalog.Cents(amount),
			Metadata: map[string]string{
				payment.MetaCustomerName:  "Ada Lovelace",
				payment.MetaCustomerEmail: "ada@example.com",
			},
		},
	}
}

func TestDispatch_Succeeded(t *testing.T) {
	feed := NewFeed(10)
	d := NewDispatcher(feed)

	res := d.Dispatch(succeededEvent("pi_1", 6998))

	if !res.Handled || res.Record == nil {
		t.Fatalf("Expected handled event with record, got %+v", res)
	}
	if res.Record.Customer != "Ada Lovelace" || res.Record.Email != "ada@example.com" {
		t.Errorf("Unexpected record %+v", res.Record)
	}

	rec, ok := feed.Find("pi_1")
	if !ok || rec.Amount != 6998 {
		t.Errorf("Expected pi_1 in feed, got %+v (%v)", rec, ok)
	}
}

func TestDispatch_Failed(t *testing.T) {
	feed := NewFeed(10)
	d := NewDispatcher(feed)

	res := d.Dispatch(&payment.Event{
		Type:   payment.EventFailed,
		Intent: &payment.Intent{ID: "pi_2", Status: "requires_payment_method", LastError: "Your card was declined."},
	})

	if !res.Handled {
		t.Fatal("Expected failed event to be handled")
	}
	if res.Record.Succeeded() {
		t.Error("Expected record not to be succeeded")
	}
	if res.Record.Error != "Your card was declined." {
		t.Errorf("Expected decline message, got %q", res.Record.Error)
	}
}

func TestDispatch_Unhandled(t *testing.T) {
	feed := NewFeed(10)
	d := NewDispatcher(feed)

	res := d.Dispatch(&payment.Event{Type: "customer.created"})

	if res.Handled {
		t.Error("Expected unhandled result")
	}
	if len(feed.Recent()) != 0 {
		t.Error("Expected nothing recorded for unhandled types")
	}
}

func TestFeed_EvictsOldest(t *testing.T) {
	feed := NewFeed(2)
	d := NewDispatcher(feed)

	d.Dispatch(succeededEvent("pi_1", 100))
	d.Dispatch(succeededEvent("pi_2", 200))
	d.Dispatch(succeededEvent("pi_3", 300))

	recent := feed.Recent()
	if len(recent) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recent))
	}
	if recent[0].IntentID != "pi_3" || recent[1].IntentID != "pi_2" {
		t.Errorf("Expected newest first [pi_3 pi_2], got [%s %s]", recent[0].IntentID, recent[1].IntentID)
	}
	if _, ok := feed.Find("pi_1"); ok {
		t.Error("Expected pi_1 evicted")
	}
}

func TestFeed_NotifiesSubscribers(t *testing.T) {
	feed := NewFeed(5)
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	feed.now = func() time.Time { return stamp }

	var got []Record
	feed.OnRecord(func(r Record) { got = append(got, r) })

	feed.Add(Record{IntentID: "pi_1", Status: "succeeded", Amount: 1999})

	if len(got) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(got))
	}
	if !got[0].ReceivedAt.Equal(stamp) {
		t.Errorf("Expected stamped record, got %v", got[0].ReceivedAt)
	}
}

func TestFeed_Stats(t *testing.T) {
	feed := NewFeed(5)
	feed.Add(Record{IntentID: "pi_1", Status: "succeeded", Amount: 1999})
	feed.Add(Record{IntentID: "pi_2", Status: "succeeded", Amount: 3499})
	feed.Add(Record{IntentID: "pi_3", Status: "requires_payment_method", Amount: 999})

	ok, failed, revenue := feed.Stats()
	if ok != 2 || failed != 1 || revenue != 5498 {
		t.Errorf("Stats = %d, %d, %d; want 2, 1, 5498", ok, failed, revenue)
	}
}

func TestRedactAll(t *testing.T) {
	recs := []Record{{IntentID: "pi_1", Status: "succeeded", Amount: 1999, Customer: "Ada", Email: "ada@example.com"}}

	out := RedactAll(recs)
	if len(out) != 1 || out[0].Customer != "" || out[0].Email != "" {
		t.Errorf("Expected customer details dropped, got %+v", out)
	}
	if out[0].IntentID != "pi_1" || out[0].Amount != 1999 {
		t.Errorf("Expected payment fields kept, got %+v", out[0])
	}
	if recs[0].Customer != "Ada" {
		t.Error("Expected the input left untouched")
	}
}
