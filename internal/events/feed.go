package events

import (
	"sync"
	"time"

	"github.com/twillco/storefront/pkg/catalog"
)

// DefaultFeedSize is how many records a feed keeps
const DefaultFeedSize = 100

// Record is one payment outcome received by webhook
type Record struct {
	EventID    string        `json:"event_id"`
	Type       string        `json:"type"`
	IntentID   string        `json:"intent_id"`
	Status     string        `json:"status"`
	Amount     catalog.Cents `json:"amount"`
	Customer   string        `json:"customer,omitempty"`
	Email      string        `json:"email,omitempty"`
	Error      string        `json:"error,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
}

// Redacted drops the customer's name and email. Records leaving the server
// process go out in this form.
func (r Record) Redacted() Record {
	r.Customer = ""
	r.Email = ""
	return r
}

// RedactAll returns redacted copies of recs
func RedactAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Redacted()
	}
	return out
}

// Succeeded reports whether the record is a successful payment
func (r Record) Succeeded() bool {
	return r.Status == "succeeded"
}

// Feed keeps the most recent records and notifies subscribers
type Feed struct {
	records     []Record
	size        int
	subscribers []func(Record)
	now         func() time.Time
	mu          sync.RWMutex
}

// NewFeed creates a feed keeping at most size records
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		records: make([]Record, 0, size),
		size:    size,
		now:     time.Now,
	}
}

// OnRecord registers fn to be called for every new record. Callbacks run on
// the caller's goroutine and must not block.
func (f *Feed) OnRecord(fn func(Record)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// Add stamps and stores rec, evicting the oldest record when full
func (f *Feed) Add(rec Record) Record {
	f.mu.Lock()
	rec.ReceivedAt = f.now()
	if len(f.records) == f.size {
		copy(f.records, f.records[1:])
		f.records = f.records[:f.size-1]
	}
	f.records = append(f.records, rec)

	subs := make([]func(Record), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(rec)
	}
	return rec
}

// Recent returns the records newest first
func (f *Feed) Recent() []Record {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]Record, len(f.records))
	for i, rec := range f.records {
		result[len(f.records)-1-i] = rec
	}
	return result
}

// Find returns the newest record for a payment intent
func (f *Feed) Find(intentID string) (Record, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].IntentID == intentID {
			return f.records[i], true
		}
	}
	return Record{}, false
}

// Stats counts succeeded and failed records and sums succeeded amounts
func (f *Feed) Stats() (succeeded, failed int, revenue catalog.Cents) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, rec := range f.records {
		if rec.Succeeded() {
			succeeded++
			revenue += rec.Amount
		} else {
			failed++
		}
	}
	return succeeded, failed, revenue
}
