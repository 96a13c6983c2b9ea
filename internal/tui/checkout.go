package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/twillco/storefront/internal/checkout"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/session"
)

const (
	inputName = iota
	inputEmail
	inputPhone
	inputAddress
	inputCard
	inputCount
)

// DefaultTestCard is the processor's test-mode card
const DefaultTestCard = "pm_card_visa"

// checkoutDoneMsg reports the end of a Submit
type checkoutDoneMsg struct {
	err error
}

// flowStateMsg mirrors a checkout transition into the UI
type flowStateMsg struct {
	from, to checkout.State
}

// CheckoutModel handles the checkout tab
type CheckoutModel struct {
	flow   *checkout.Flow
	sess   *session.Session
	inputs []textinput.Model
	labels []string
	focus  int // -1 when no field has focus
	width  int
	height int

	submitting bool
	message    string
	msgType    string
}

// NewCheckoutModel creates the checkout tab over flow
func NewCheckoutModel(flow *checkout.Flow, sess *session.Session) CheckoutModel {
	labels := []string{"Full Name", "Email", "Phone", "Shipping Address", "Card"}
	placeholders := []string{"Jane Doe", "jane@example.com", "555-0100", "1 Main St, Springfield", DefaultTestCard}

	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		in.Width = 40
		inputs[i] = in
	}

	return CheckoutModel{
		flow:   flow,
		sess:   sess,
		inputs: inputs,
		labels: labels,
		focus:  -1,
	}
}

// SetSize sets the component size
func (m *CheckoutModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// InputFocused reports whether keystrokes belong to a text field
func (m CheckoutModel) InputFocused() bool {
	return m.focus >= 0
}

// Open starts checkout if it is idle or finished and focuses the form
func (m *CheckoutModel) Open() {
	switch m.flow.State() {
	case checkout.Idle, checkout.Succeeded:
		if err := m.flow.Begin(); err != nil {
			m.setMessage(capitalize(err.Error()), "error")
			m.setFocus(-1)
			return
		}
		m.message = ""
	}
	if m.flow.SubmitEnabled() {
		m.setFocus(inputName)
	}
}

func (m *CheckoutModel) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// Details reads the form
func (m CheckoutModel) Details() checkout.Details {
	card := strings.TrimSpace(m.inputs[inputCard].Value())
	if card == "" {
		card = DefaultTestCard
	}
	return checkout.Details{
		Name:    m.inputs[inputName].Value(),
		Email:   m.inputs[inputEmail].Value(),
		Phone:   m.inputs[inputPhone].Value(),
		Address: m.inputs[inputAddress].Value(),
		Card:    payment.Card{PaymentMethod: card},
	}
}

// Update handles messages
func (m CheckoutModel) Update(msg tea.Msg) (CheckoutModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.InputFocused() {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "i", "enter":
			m.Open()
		case "x":
			m.flow.Cancel()
			m.setMessage("Checkout canceled", "info")
		}

	case checkoutDoneMsg:
		m.submitting = false
		switch {
		case msg.err == nil:
			m.setMessage(m.flow.Message(), "success")
			for i := range m.inputs {
				m.inputs[i].SetValue("")
			}
			m.setFocus(-1)
		case errors.Is(msg.err, checkout.ErrMissingFields), errors.Is(msg.err, checkout.ErrEmptyCart):
			m.setMessage(capitalize(msg.err.Error()), "error")
		default:
			m.setMessage(m.flow.Message(), "error")
		}
	}

	return m, nil
}

func (m CheckoutModel) updateInput(msg tea.KeyMsg) (CheckoutModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setFocus(-1)
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % inputCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + inputCount - 1) % inputCount)
		return m, nil
	case "enter":
		if m.focus < inputCount-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit runs the payment off the UI goroutine. The flow refuses a second
// submission while one is in flight.
func (m *CheckoutModel) submit() tea.Cmd {
	if m.submitting || !m.flow.SubmitEnabled() {
		return nil
	}

	m.submitting = true
	m.setMessage("Processing...", "info")

	flow, details := m.flow, m.Details()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return checkoutDoneMsg{err: flow.Submit(ctx, details)}
	}
}

func (m *CheckoutModel) setMessage(text, kind string) {
	m.message = text
	m.msgType = kind
}

// View renders the checkout tab
func (m CheckoutModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Checkout"))
	b.WriteString("\n\n")

	state := m.flow.State()
	b.WriteString(StatusIcon(state.String()) + " " + TextNormal.Render(strings.ReplaceAll(state.String(), "_", " ")))
	b.WriteString("\n\n")

	if state == checkout.Idle && m.sess.Cart().Len() == 0 {
		b.WriteString(TextMuted.Render("Add a design to your cart to check out."))
	} else {
		b.WriteString(TextMuted.Render(fmt.Sprintf("%d items  ", m.sess.CartCount())))
		b.WriteString(TotalStyle.Render("Total: " + m.sess.Cart().Total().String()))
		b.WriteString("\n\n")

		for i, in := range m.inputs {
			label := InputLabelStyle
			box := InputStyle
			if i == m.focus {
				label = InputLabelFocusedStyle
				box = InputFocusedStyle
			}
			b.WriteString(label.Render(m.labels[i]))
			b.WriteString("\n")
			b.WriteString(box.Render(in.View()))
			b.WriteString("\n")
		}

		button := fmt.Sprintf("Pay %s", m.sess.Cart().Total())
		if m.submitting || !m.flow.SubmitEnabled() {
			b.WriteString(ButtonInactiveStyle.Render(button))
		} else {
			b.WriteString(ButtonStyle.Render(button))
		}
		b.WriteString("\n")
	}

	if intent := m.flow.Intent(); intent != nil && state == checkout.Succeeded {
		b.WriteString("\n")
		b.WriteString(TextMuted.Render("Order: ") + TextNormal.Render(intent.ID))
	}

	if m.message != "" {
		b.WriteString("\n\n")
		b.WriteString(renderMessage(m.message, m.msgType))
	}

	b.WriteString("\n\n")
	b.WriteString(m.Help())

	return b.String()
}

// Help returns help text for this tab
func (m CheckoutModel) Help() string {
	if m.InputFocused() {
		return RenderHelp("tab", "next field") + "  " +
			RenderHelp("enter", "next/pay") + "  " +
			RenderHelp("esc", "leave form")
	}
	return RenderHelp("i", "edit") + "  " +
		RenderHelp("x", "cancel checkout")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
