package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/twillco/storefront/internal/cart"
	"github.com/twillco/storefront/internal/session"
)

type beginCheckoutMsg struct{}

// CartModel handles the cart tab
type CartModel struct {
	sess         *session.Session
	items        []cart.Item
	cursor       int
	scrollOffset int
	width        int
	height       int
	message      string
	msgType      string
}

// NewCartModel creates a new cart model
func NewCartModel(sess *session.Session) CartModel {
	return CartModel{sess: sess}
}

// SetSize sets the component size
func (m *CartModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.adjustScroll()
}

// Refresh reloads the line items from the cart
func (m *CartModel) Refresh() {
	m.items = m.sess.Cart().List()
	if m.cursor >= len(m.items) {
		m.cursor = maxInt(0, len(m.items)-1)
	}
	m.adjustScroll()
}

// Update handles messages
func (m CartModel) Update(msg tea.Msg) (CartModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			idx := m.scrollOffset + msg.Y - 3
			if idx >= 0 && idx < len(m.items) {
				m.cursor = idx
				m.adjustScroll()
			}
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.adjustScroll()
			}
		case "d", "delete", "backspace":
			if m.cursor < len(m.items) {
				item := m.items[m.cursor]
				if m.sess.RemoveFromCart(item.ID) {
					m.message = fmt.Sprintf("Removed %s", session.DisplayName(item.Product))
					m.msgType = "success"
				}
				m.Refresh()
			}
		case "c":
			return m, func() tea.Msg { return beginCheckoutMsg{} }
		}
	}

	return m, nil
}

// View renders the cart tab
func (m CartModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Your Cart"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(TextMuted.Render("Your cart is empty"))
		b.WriteString("\n\n")
		b.WriteString(TotalStyle.Render("Total: $0.00"))
	} else {
		maxItems := maxInt(1, m.height-12)
		end := minInt(len(m.items), m.scrollOffset+maxItems)

		for i := m.scrollOffset; i < end; i++ {
			item := m.items[i]
			cursor := "  "
			style := ListItemStyle
			if i == m.cursor {
				cursor = "▸ "
				style = SelectedItemStyle
			}

			colorName := item.Color
			if c, ok := m.sess.Catalog().Color(item.Color); ok {
				colorName = c.Name
			}

			line := fmt.Sprintf("%s%-11s %-13s %-4s ×%-3d %9s",
				cursor, session.DisplayName(item.Product), Truncate(colorName, 13), item.Size, item.Quantity, item.Total)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}

		if m.scrollOffset > 0 {
			b.WriteString(TextMuted.Render("  ... (↑ to scroll) ...\n"))
		}
		if end < len(m.items) {
			b.WriteString(TextMuted.Render("  ... (↓ to scroll) ...\n"))
		}

		total := m.sess.Cart().Total()
		b.WriteString("\n")
		b.WriteString(TextMuted.Render(fmt.Sprintf("Subtotal (%d items): ", m.sess.CartCount())) + TextNormal.Render(total.String()))
		b.WriteString("\n")
		b.WriteString(TotalStyle.Render("Total: " + total.String()))
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
func (m CartModel) Help() string {
	return RenderHelp("↑/↓", "select") + "  " +
		RenderHelp("d", "remove") + "  " +
		RenderHelp("c", "checkout")
}

// adjustScroll keeps the cursor visible
func (m *CartModel) adjustScroll() {
	maxVisible := maxInt(1, m.height-12)

	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+maxVisible {
		m.scrollOffset = m.cursor - maxVisible + 1
	}

	maxOffset := maxInt(0, len(m.items)-maxVisible)
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
