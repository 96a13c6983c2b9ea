package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/twillco/storefront/internal/checkout"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/session"
)

// Tab represents a navigation tab
type Tab int

const (
	TabDesigner Tab = iota
	TabCart
	TabCheckout
)

func (t Tab) String() string {
	return []string{"Designer", "Cart", "Checkout"}[t]
}

// Backend is the storefront server as seen by the client
type Backend interface {
	checkout.IntentRequester
	UploadDesign(ctx context.Context, filename string, data []byte) (*checkout.UploadResult, error)
}

type logMsg struct {
	message string
	level   string
}

// App is the main Bubble Tea model
type App struct {
	// Dependencies
	sess    *session.Session
	flow    *checkout.Flow
	server  string
	program *tea.Program

	// UI State
	activeTab Tab
	width     int
	height    int
	ready     bool
	quitting  bool

	// Logs
	logs    []logEntry
	maxLogs int

	// Components
	spinner  spinner.Model
	designer DesignerModel
	cart     CartModel
	checkout CheckoutModel

	// Timing
	startTime time.Time
}

type logEntry struct {
	time    time.Time
	message string
	level   string
}

// NewApp creates the storefront client for one session
func NewApp(sess *session.Session, backend Backend, confirmer payment.Confirmer, server string) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	flow := checkout.New(sess.Cart(), backend, confirmer)

	app := &App{
		sess:      sess,
		flow:      flow,
		server:    server,
		activeTab: TabDesigner,
		logs:      make([]logEntry, 0),
		maxLogs:   100,
		spinner:   s,
		startTime: time.Now(),
	}

	app.designer = NewDesignerModel(sess, backend)
	app.cart = NewCartModel(sess)
	app.checkout = NewCheckoutModel(flow, sess)

	// Transitions also fire from inside Update (Begin, Cancel), where a
	// blocking Send would deadlock the event loop
	flow.OnTransition(func(from, to checkout.State) {
		if p := app.program; p != nil {
			go p.Send(flowStateMsg{from: from, to: to})
		}
	})

	return app
}

// Flow exposes the checkout state machine
func (a *App) Flow() *checkout.Flow {
	return a.flow
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func (a *App) inputFocused() bool {
	switch a.activeTab {
	case TabDesigner:
		return a.designer.InputFocused()
	case TabCheckout:
		return a.checkout.InputFocused()
	}
	return false
}

func (a *App) switchTab(t Tab) {
	a.activeTab = t
	switch t {
	case TabCart:
		a.cart.Refresh()
	case TabCheckout:
		a.checkout.Open()
	}
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.quitting = true
			return a, tea.Quit
		}

		// Global keys only when no text field owns the keyboard
		if !a.inputFocused() {
			switch msg.String() {
			case "q":
				a.quitting = true
				return a, tea.Quit
			case "1":
				a.switchTab(TabDesigner)
				return a, nil
			case "2":
				a.switchTab(TabCart)
				return a, nil
			case "3":
				a.switchTab(TabCheckout)
				return a, nil
			case "tab":
				a.switchTab((a.activeTab + 1) % 3)
				return a, nil
			case "shift+tab":
				a.switchTab((a.activeTab + 2) % 3)
				return a, nil
			}
		}

		cmds = append(cmds, a.updateActive(msg))

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true

		w, h := a.contentSize()
		a.designer.SetSize(w, h)
		a.cart.SetSize(w, h)
		a.checkout.SetSize(w, h)

	case designLoadedMsg, designUploadedMsg:
		var cmd tea.Cmd
		a.designer, cmd = a.designer.Update(msg)
		cmds = append(cmds, cmd)
		if a.designer.message != "" {
			a.addLog(a.designer.message, a.designer.msgType)
		}

	case cartChangedMsg:
		a.cart.Refresh()

	case beginCheckoutMsg:
		a.switchTab(TabCheckout)

	case checkoutDoneMsg:
		var cmd tea.Cmd
		a.checkout, cmd = a.checkout.Update(msg)
		cmds = append(cmds, cmd)
		a.cart.Refresh()
		a.addLog(a.checkout.message, a.checkout.msgType)

	case flowStateMsg:
		a.addLog(fmt.Sprintf("checkout: %s -> %s", msg.from, msg.to), "info")

	case logMsg:
		a.addLog(msg.message, msg.level)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		if a.activeTab == TabCart {
			translated := msg
			translated.X = msg.X - sidebarWidth - 2
			translated.Y = msg.Y - 1
			var cmd tea.Cmd
			a.cart, cmd = a.cart.Update(translated)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.activeTab {
	case TabDesigner:
		a.designer, cmd = a.designer.Update(msg)
	case TabCart:
		a.cart, cmd = a.cart.Update(msg)
	case TabCheckout:
		a.checkout, cmd = a.checkout.Update(msg)
	}
	return cmd
}

const sidebarWidth = 24

func (a *App) contentSize() (int, int) {
	w := maxInt(20, a.width-sidebarWidth-1)
	h := maxInt(1, a.height-1)
	return w, h
}

// View renders the UI
func (a *App) View() string {
	if a.quitting {
		return "\n  Goodbye!\n\n"
	}

	if !a.ready {
		return "\n  Loading...\n"
	}

	contentWidth, contentHeight := a.contentSize()
	sidebar := a.renderSidebar(sidebarWidth, contentHeight)
	content := a.renderContent(contentWidth, contentHeight)
	top := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)

	fullView := lipgloss.JoinVertical(lipgloss.Left, top, a.renderStatusBar())

	// Exactly fill the screen so stale rows are cleared
	lines := strings.Split(fullView, "\n")
	for len(lines) < a.height {
		lines = append(lines, strings.Repeat(" ", a.width))
	}
	if len(lines) > a.height {
		lines = lines[:a.height]
	}

	return strings.Join(lines, "\n")
}

func (a *App) renderSidebar(width, height int) string {
	var lines []string

	lines = append(lines, LogoStyle.Render(" Twill T-Shirt Co"))
	lines = append(lines, TextMuted.Render(" "+Truncate(a.server, width-3)))
	lines = append(lines, "")

	lines = append(lines, TextMuted.Render(" NAVIGATION"))
	lines = append(lines, "")

	for i, t := range []Tab{TabDesigner, TabCart, TabCheckout} {
		label := t.String()
		if t == TabCart {
			label = fmt.Sprintf("%s (%d)", label, a.sess.CartCount())
		}

		itemText := fmt.Sprintf(" %d %s", i+1, label)
		if padding := width - lipgloss.Width(itemText) - 2; padding > 0 {
			itemText += strings.Repeat(" ", padding)
		}

		if t == a.activeTab {
			lines = append(lines, SidebarActiveStyle.Render(itemText))
		} else {
			lines = append(lines, SidebarItemStyle.Render(itemText))
		}
	}

	content := strings.Join(lines, "\n")
	for lipgloss.Height(content) < height-2 {
		content += "\n"
	}

	return SidebarStyle.
		Width(width).
		Height(height).
		Render(content)
}

func (a *App) renderContent(width, height int) string {
	var content string
	switch a.activeTab {
	case TabDesigner:
		content = a.designer.View()
	case TabCart:
		content = a.cart.View()
	case TabCheckout:
		content = a.checkout.View()
	}

	lines := strings.Split(content, "\n")
	if len(lines) > height {
		content = strings.Join(lines[:height], "\n")
	}

	return ContentStyle.
		Width(width).
		Height(height).
		Render(content)
}

func (a *App) renderStatusBar() string {
	base := lipgloss.NewStyle().Background(BgCard).Foreground(colorTextNormal)

	seg := func(text string, fg, bg lipgloss.Color, bold bool) string {
		s := lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1)
		if bold {
			s = s.Bold(true)
		}
		return s.Render(text)
	}
	pipe := base.Render(" | ")

	modeText, modeBg := "NAV", BgHover
	if a.inputFocused() {
		modeText, modeBg = "EDIT", Warning
	}
	mode := seg(modeText, colorTextBright, modeBg, true)

	cartSeg := seg(fmt.Sprintf("cart %d", a.sess.CartCount()), colorTextBright, Secondary, true)
	total := seg(a.sess.Cart().Total().String(), colorTextBright, BgHover, false)

	state := a.flow.State()
	stateText := state.String()
	if state == checkout.AwaitingClientSecret || state == checkout.ConfirmingPayment {
		stateText = a.spinner.View() + " " + stateText
	}
	stateSeg := seg(stateText, colorTextBright, BgHover, false)

	msgText, msgBg, msgFg := "ready", BgCard, colorTextNormal
	if len(a.logs) > 0 {
		last := a.logs[len(a.logs)-1]
		msgText = last.message
		msgFg = colorTextBright
		switch last.level {
		case "error":
			msgBg = Error
		case "warning":
			msgBg = Warning
		case "success":
			msgBg = Success
		default:
			msgBg = BgConsole
		}
	}

	uptime := time.Since(a.startTime)
	up := seg(fmt.Sprintf("up %02d:%02d", int(uptime.Hours()), int(uptime.Minutes())%60), colorTextBright, Primary, true)

	leftFixed := mode + pipe + cartSeg + pipe + total + pipe + stateSeg + pipe
	remaining := maxInt(10, a.width-lipgloss.Width(leftFixed)-lipgloss.Width(pipe)-lipgloss.Width(up))
	msg := seg(Truncate(msgText, remaining), msgFg, msgBg, false)

	left := leftFixed + msg
	gap := maxInt(1, a.width-lipgloss.Width(left)-lipgloss.Width(pipe)-lipgloss.Width(up))

	return base.Width(a.width).Render(left + strings.Repeat(" ", gap) + pipe + up)
}

func (a *App) addLog(message, level string) {
	if message == "" {
		return
	}
	a.logs = append(a.logs, logEntry{
		time:    time.Now(),
		message: message,
		level:   level,
	})
	if len(a.logs) > a.maxLogs {
		a.logs = a.logs[1:]
	}
}

// Run starts the TUI and blocks until it exits
func (a *App) Run() error {
	a.program = tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := a.program.Run()
	return err
}

// LogWriter returns an io.Writer that feeds the status line. Writes are
// delivered through the program so they are safe from any goroutine.
func (a *App) LogWriter() io.Writer {
	return &appLogWriter{app: a}
}

type appLogWriter struct {
	app *App
}

func (w *appLogWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if p := w.app.program; message != "" && p != nil {
		go p.Send(logMsg{message: message, level: "info"})
	}
	return len(p), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
