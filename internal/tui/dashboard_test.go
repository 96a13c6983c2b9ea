package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/twillco/storefront/internal/api"
	"github.com/twillco/storefront/internal/events"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/upload"
	"github.com/twillco/storefront/pkg/catalog"
)

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	store, err := upload.New(t.TempDir())
	if err != nil {
		t.Fatalf("upload store: %v", err)
	}
	server := api.NewServer(catalog.Default(), &payment.MockProcessor{}, store, events.NewFeed(10), api.Options{})
	t.Cleanup(func() { server.Shutdown(context.Background()) })

	return NewDashboard(server, "3000", "http://localhost:3000")
}

func TestDashboard_Panels(t *testing.T) {
	d := newTestDashboard(t)

	d.server.Feed().Add(events.Record{
		IntentID:   "pi_1",
		Type:       payment.EventSucceeded,
		Status:     payment.StatusSucceeded,
		Amount:     6998,
		Customer:   "Ada",
		ReceivedAt: time.Now(),
	})

	d.refreshAll()

	if rows := d.paymentsTable.GetRowCount(); rows != 2 {
		t.Errorf("Expected header + 1 payment row, got %d", rows)
	}
	if cell := d.paymentsTable.GetCell(1, 3).Text; cell != "$69.98" {
		t.Errorf("Expected amount cell $69.98, got %q", cell)
	}
	if n := d.uploadsList.GetItemCount(); n != 1 {
		t.Errorf("Expected placeholder upload item, got %d", n)
	}
	if !strings.Contains(d.statusBox.GetText(false), "Revenue: $69.98") {
		t.Errorf("Expected revenue in status, got %q", d.statusBox.GetText(false))
	}
}

func TestDashboard_Commands(t *testing.T) {
	d := newTestDashboard(t)
	d.server.Feed().Add(events.Record{IntentID: "pi_7", Status: "requires_payment_method", Customer: "Bo"})

	d.executeCommand("order pi_7")
	d.executeCommand("order pi_missing")
	d.executeCommand("bogus")

	logs := strings.Join(d.Logs(), "")
	for _, want := range []string{"pi_7 requires_payment_method", "No webhook seen for pi_missing", "Unknown command: bogus"} {
		if !strings.Contains(logs, want) {
			t.Errorf("Expected log %q in %q", want, logs)
		}
	}

	d.executeCommand("clear")
	if got := len(d.Logs()); got != 0 {
		t.Errorf("Expected logs cleared, got %d", got)
	}
}

func TestDashboard_LogWriterLevels(t *testing.T) {
	d := newTestDashboard(t)
	w := d.LogWriter()

	fmt.Fprintln(w, "❌ Payment Intent Error: boom")
	fmt.Fprintln(w, "   ")

	logs := d.Logs()
	if len(logs) != 1 {
		t.Fatalf("Expected one line, got %d", len(logs))
	}
	if !strings.HasPrefix(logs[0], "[red]") {
		t.Errorf("Expected error coloring, got %q", logs[0])
	}
}
