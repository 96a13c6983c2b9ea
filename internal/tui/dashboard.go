package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/twillco/storefront/internal/api"
	"github.com/twillco/storefront/pkg/catalog"
)

// Dashboard is the server console built on tview
type Dashboard struct {
	App    *tview.Application
	server *api.Server
	port   string
	url    string

	// Main layout
	flex *tview.Flex

	// Panels
	paymentsTable *tview.Table
	uploadsList   *tview.List
	statusBox     *tview.TextView
	logsArea      *tview.TextView
	commandInput  *tview.InputField

	// State
	logs      []string
	logsDirty bool
	maxLogs   int
	startTime time.Time
	mu        sync.Mutex
}

// NewDashboard creates the console for server
func NewDashboard(server *api.Server, port, url string) *Dashboard {
	d := &Dashboard{
		App:       tview.NewApplication(),
		server:    server,
		port:      port,
		url:       url,
		logs:      make([]string, 0),
		maxLogs:   200,
		startTime: time.Now(),
	}

	d.setupUI()
	return d
}

func (d *Dashboard) setupUI() {
	d.paymentsTable = tview.NewTable()
	d.paymentsTable.SetBorder(true)
	d.paymentsTable.SetTitle("Recent Payments")

	d.uploadsList = tview.NewList()
	d.uploadsList.SetBorder(true)
	d.uploadsList.SetTitle("Uploaded Designs")

	d.statusBox = tview.NewTextView()
	d.statusBox.SetBorder(true)
	d.statusBox.SetTitle("Server Status")
	d.statusBox.SetDynamicColors(true)

	d.logsArea = tview.NewTextView()
	d.logsArea.SetBorder(true)
	d.logsArea.SetTitle("Server Logs")
	d.logsArea.SetDynamicColors(true)
	d.logsArea.SetScrollable(true)

	d.commandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0).
		SetPlaceholder("Type a command (e.g., 'help')").
		SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter {
				d.executeCommand(d.commandInput.GetText())
				d.commandInput.SetText("")
			}
		})

	topRow := tview.NewFlex().
		AddItem(d.paymentsTable, 0, 2, false).
		AddItem(d.uploadsList, 0, 1, false).
		AddItem(d.statusBox, 0, 1, false)

	bottom := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.logsArea, 0, 3, false).
		AddItem(d.commandInput, 1, 0, true)

	d.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, false).
		AddItem(bottom, 0, 1, false)

	d.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if d.commandInput.HasFocus() {
			if event.Key() == tcell.KeyEsc {
				d.App.SetFocus(d.paymentsTable)
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			d.App.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case ':':
				d.App.SetFocus(d.commandInput)
				return nil
			case 'q':
				d.App.Stop()
				return nil
			case 'r':
				d.refreshAll()
				return nil
			}
		}
		return event
	})

	d.App.SetRoot(d.flex, true)
}

// Run starts the console and blocks until it is closed
func (d *Dashboard) Run() error {
	d.refreshAll()

	go d.refreshTicker()

	d.AddLog("👕 Twill T-Shirt Co server starting...", "info")

	return d.App.Run()
}

// Stop closes the console
func (d *Dashboard) Stop() {
	d.App.Stop()
}

func (d *Dashboard) refreshTicker() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		d.App.QueueUpdateDraw(func() {
			d.refreshAll()
		})
	}
}

func (d *Dashboard) refreshAll() {
	d.refreshPayments()
	d.refreshUploads()
	d.refreshStatus()
	d.flushLogs()
}

func (d *Dashboard) refreshPayments() {
	d.paymentsTable.Clear()

	for col, title := range []string{"Status", "Intent", "Customer", "Amount", "Time"} {
		d.paymentsTable.SetCell(0, col, tview.NewTableCell(title).SetAlign(tview.AlignCenter).SetSelectable(false))
	}

	for i, rec := range d.server.Feed().Recent() {
		row := i + 1
		d.paymentsTable.SetCell(row, 0, tview.NewTableCell(paymentIcon(rec.Succeeded())+" "+rec.Status))
		d.paymentsTable.SetCell(row, 1, tview.NewTableCell(rec.IntentID))
		d.paymentsTable.SetCell(row, 2, tview.NewTableCell(rec.Customer))
		d.paymentsTable.SetCell(row, 3, tview.NewTableCell(rec.Amount.String()).SetAlign(tview.AlignRight))
		d.paymentsTable.SetCell(row, 4, tview.NewTableCell(time.Since(rec.ReceivedAt).Truncate(time.Second).String()))
	}
}

func (d *Dashboard) refreshUploads() {
	d.uploadsList.Clear()

	entries := d.server.Uploads().List()
	if len(entries) == 0 {
		d.uploadsList.AddItem("No designs uploaded", "", 0, nil)
		return
	}

	for _, e := range entries {
		details := fmt.Sprintf("%s • %s • %s", e.ContentType, formatBytes(e.Size), e.UploadedAt.Format("15:04:05"))
		d.uploadsList.AddItem(e.OriginalName, details, 0, nil)
	}
}

func (d *Dashboard) refreshStatus() {
	uptime := time.Since(d.startTime)
	succeeded, failed, revenue := d.server.Feed().Stats()

	status := fmt.Sprintf(`[green]🟢 Running[white]

Uptime: %dh %dm
API: :%s
URL: %s
Clients: %d
Designs: %d

[green]%d succeeded[white]  [red]%d failed[white]
Revenue: %s`,
		int(uptime.Hours()), int(uptime.Minutes())%60,
		d.port, d.url,
		d.server.Hub().Count(),
		d.server.Uploads().Len(),
		succeeded, failed, revenue)

	d.statusBox.SetText(status)
}

func (d *Dashboard) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	d.AddLog(fmt.Sprintf("> %s", cmd), "command")

	switch command {
	case "payments", "p":
		d.AddLog(revenueLine(d.server.Feed().Stats()), "info")

	case "order", "o":
		if len(parts) < 2 {
			d.AddLog("Usage: order <payment intent id>", "error")
			break
		}
		rec, ok := d.server.Feed().Find(parts[1])
		if !ok {
			d.AddLog(fmt.Sprintf("No webhook seen for %s", parts[1]), "warning")
			break
		}
		d.AddLog(fmt.Sprintf("%s %s %s %s %s", rec.IntentID, rec.Status, rec.Amount, rec.Customer, rec.Email), "info")

	case "uploads", "u":
		d.AddLog(fmt.Sprintf("%d designs in %s", d.server.Uploads().Len(), d.server.Uploads().Dir()), "info")

	case "help", "h", "?":
		d.showHelp()

	case "clear":
		d.mu.Lock()
		d.logs = d.logs[:0]
		d.logsDirty = true
		d.mu.Unlock()

	case "refresh", "r":
		d.refreshAll()

	case "quit", "q":
		d.App.Stop()

	default:
		d.AddLog(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", command), "error")
	}

	d.flushLogs()
}

func (d *Dashboard) showHelp() {
	help := []string{
		"Available commands:",
		"  payments, p          - Payment totals",
		"  order, o <id>        - Show the last webhook for an intent",
		"  uploads, u           - Upload directory summary",
		"  refresh, r           - Refresh all panels",
		"  clear                - Clear logs",
		"  help, h, ?           - Show this help",
		"  quit, q              - Stop the server",
	}
	d.AddLog(strings.Join(help, "\n"), "info")
}

// AddLog queues a log line; it is drawn on the next refresh. Safe for
// concurrent use.
func (d *Dashboard) AddLog(message string, level string) {
	var color, icon string

	switch level {
	case "error":
		color, icon = "[red]", "❌"
	case "warning":
		color, icon = "[yellow]", "⚠️"
	case "command":
		color, icon = "[cyan]", ">"
	default:
		color, icon = "[white]", "ℹ️"
	}

	entry := fmt.Sprintf("%s[%s] %s %s[white]\n", color, time.Now().Format("15:04:05"), icon, tview.Escape(message))

	d.mu.Lock()
	d.logs = append(d.logs, entry)
	if len(d.logs) > d.maxLogs {
		d.logs = d.logs[len(d.logs)-d.maxLogs:]
	}
	d.logsDirty = true
	d.mu.Unlock()
}

// flushLogs redraws the log panel; it must run on the UI goroutine
func (d *Dashboard) flushLogs() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.logsDirty {
		return
	}
	d.logsDirty = false

	d.logsArea.Clear()
	for _, line := range d.logs {
		fmt.Fprint(d.logsArea, line)
	}
	d.logsArea.ScrollToEnd()
}

// Logs returns the buffered log lines
func (d *Dashboard) Logs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.logs))
	copy(out, d.logs)
	return out
}

func paymentIcon(succeeded bool) string {
	if succeeded {
		return "✅"
	}
	return "❌"
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// LogWriter creates an io.Writer that writes to the logs panel
func (d *Dashboard) LogWriter() io.Writer {
	return &dashboardLogWriter{dash: d}
}

type dashboardLogWriter struct {
	dash *Dashboard
}

func (w *dashboardLogWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if message != "" {
		level := "info"
		switch {
		case strings.Contains(message, "❌"):
			level = "error"
		case strings.Contains(message, "⚠️"):
			level = "warning"
		}
		w.dash.AddLog(message, level)
	}
	return len(p), nil
}

func revenueLine(succeeded, failed int, revenue catalog.Cents) string {
	return fmt.Sprintf("%d succeeded, %d failed, %s revenue", succeeded, failed, revenue)
}
