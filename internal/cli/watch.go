package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/twillco/storefront/internal/api"
	"github.com/twillco/storefront/internal/events"
	"github.com/twillco/storefront/pkg/catalog"
)

func newWatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream payment and upload notifications from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, o.server(), cmd.OutOrStdout())
		},
	}
}

// wsURL maps an http(s) server address to its /ws endpoint
func wsURL(server string) string {
	switch {
	case strings.HasPrefix(server, "https://"):
		return "wss://" + strings.TrimPrefix(server, "https://") + "/ws"
	case strings.HasPrefix(server, "http://"):
		return "ws://" + strings.TrimPrefix(server, "http://") + "/ws"
	default:
		return "ws://" + server + "/ws"
	}
}

// watch prints notifications until ctx is canceled or the server hangs up
func watch(ctx context.Context, server string, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL(server), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", server, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	fmt.Fprintf(out, "📡 Watching %s (Ctrl+C to stop)\n", server)

	if err := conn.WriteJSON(api.WSMessage{Event: api.EventRecent}); err != nil {
		return fmt.Errorf("failed to request recent payments: %w", err)
	}

	for {
		var msg api.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		for _, line := range formatEvent(msg) {
			fmt.Fprintln(out, line)
		}
	}
}

// formatEvent renders one notification as output lines
func formatEvent(msg api.WSMessage) []string {
	switch msg.Event {
	case api.EventPaymentSucceeded, api.EventPaymentFailed:
		icon := "✅"
		if msg.Event == api.EventPaymentFailed {
			icon = "❌"
		}
		line := fmt.Sprintf("%s %s %s %s", icon, msg.Event, str(msg.Data["intent_id"]),
			catalog.Cents(num(msg.Data["amount"])))
		if e := str(msg.Data["error"]); e != "" {
			line += " (" + e + ")"
		}
		return []string{strings.TrimSpace(line)}

	case api.EventDesignUploaded:
		return []string{fmt.Sprintf("🖼️  design uploaded %s", str(msg.Data["path"]))}

	case api.EventRecent:
		// Records arrive as generic JSON; round-trip them into the typed form
		raw, err := json.Marshal(msg.Data["payments"])
		if err != nil {
			return nil
		}
		var recs []events.Record
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil
		}
		if len(recs) == 0 {
			return []string{"No payments yet"}
		}
		lines := make([]string, 0, len(recs))
		for i := len(recs) - 1; i >= 0; i-- {
			r := recs[i]
			icon := "✅"
			if !r.Succeeded() {
				icon = "❌"
			}
			lines = append(lines, fmt.Sprintf("%s %s %s %s %s", icon, r.ReceivedAt.Format("15:04:05"), r.IntentID, r.Status, r.Amount))
		}
		return lines

	case api.EventError:
		return []string{fmt.Sprintf("⚠️  %s", str(msg.Data["error"]))}
	}
	return nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) int64 {
	f, _ := v.(float64)
	return int64(f)
}
