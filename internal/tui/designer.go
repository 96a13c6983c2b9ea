package tui

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/twillco/storefront/internal/checkout"
	"github.com/twillco/storefront/internal/session"
)

type designerField int

const (
	fieldProduct designerField = iota
	fieldColor
	fieldSize
	fieldQuantity
	fieldDesign
	fieldCount
)

// designLoadedMsg carries a decode result back to the UI goroutine
type designLoadedMsg struct {
	gen  int
	name string
	data []byte
	img  image.Image
	err  error
}

type designUploadedMsg struct {
	result *checkout.UploadResult
	err    error
}

type cartChangedMsg struct{}

// DesignerModel handles the designer tab
type DesignerModel struct {
	sess    *session.Session
	backend Backend
	width   int
	height  int

	focus    designerField
	quantity textinput.Model
	path     textinput.Model

	// generation increments on every load or reset; decodes started under
	// an older generation are dropped on arrival
	generation int
	loading    bool
	designData []byte

	preview     string
	previewCols int

	message string
	msgType string
}

// NewDesignerModel creates the designer tab for sess
func NewDesignerModel(sess *session.Session, backend Backend) DesignerModel {
	qty := textinput.New()
	qty.Prompt = ""
	qty.CharLimit = 3
	qty.Width = 5
	qty.SetValue(fmt.Sprintf("%d", sess.Quantity()))

	path := textinput.New()
	path.Prompt = ""
	path.Placeholder = "path/to/design.png"
	path.CharLimit = 256
	path.Width = 32

	return DesignerModel{
		sess:        sess,
		backend:     backend,
		quantity:    qty,
		path:        path,
		previewCols: 40,
	}
}

// SetSize sets the component size
func (m *DesignerModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	if cols := previewColumns(width, height); cols != m.previewCols || m.preview == "" {
		m.previewCols = cols
		m.refreshPreview()
	}
}

// InputFocused reports whether keystrokes belong to a text field
func (m DesignerModel) InputFocused() bool {
	return m.focus == fieldQuantity || m.focus == fieldDesign
}

func (m *DesignerModel) refreshPreview() {
	m.preview = HalfBlocks(m.sess.Render(), m.previewCols)
}

func (m *DesignerModel) setFocus(f designerField) {
	m.focus = (f + fieldCount) % fieldCount
	m.quantity.Blur()
	m.path.Blur()

	switch m.focus {
	case fieldQuantity:
		m.quantity.Focus()
	case fieldDesign:
		m.path.Focus()
	}
}

// Update handles messages
func (m DesignerModel) Update(msg tea.Msg) (DesignerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.InputFocused() {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "up", "k":
			m.setFocus(m.focus - 1)
		case "down", "j":
			m.setFocus(m.focus + 1)
		case "left", "h":
			m.cycle(-1)
		case "right", "l":
			m.cycle(1)
		case "a":
			return m, m.addToCart()
		case "x":
			m.generation++
			m.loading = false
			m.designData = nil
			m.sess.ClearDesign()
			m.refreshPreview()
			m.setMessage("Design removed", "info")
		case "u":
			return m, m.upload()
		}

	case designLoadedMsg:
		if msg.gen != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.setMessage(msg.err.Error(), "error")
			return m, nil
		}
		m.sess.SetDesign(msg.name, msg.img)
		m.designData = msg.data
		m.refreshPreview()
		m.setMessage(fmt.Sprintf("Loaded %s", msg.name), "success")

	case designUploadedMsg:
		if msg.err != nil {
			m.setMessage(fmt.Sprintf("Upload failed: %v", msg.err), "error")
			return m, nil
		}
		m.setMessage(fmt.Sprintf("Uploaded as %s", msg.result.Path), "success")
	}

	return m, nil
}

func (m DesignerModel) updateInput(msg tea.KeyMsg) (DesignerModel, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.setFocus(m.focus - 1)
		return m, nil
	case "down":
		m.setFocus(m.focus + 1)
		return m, nil
	case "esc":
		m.setFocus(fieldProduct)
		return m, nil
	case "enter":
		if m.focus == fieldDesign {
			return m, m.startLoad(strings.TrimSpace(m.path.Value()))
		}
		m.setFocus(m.focus + 1)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == fieldQuantity {
		m.quantity, cmd = m.quantity.Update(msg)
		m.sess.SetQuantity(m.quantity.Value())
		return m, cmd
	}
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *DesignerModel) cycle(delta int) {
	cat := m.sess.Catalog()

	switch m.focus {
	case fieldProduct:
		idx := 0
		for i, p := range cat.Products {
			if p.ID == m.sess.Product().ID {
				idx = i
			}
		}
		next := cat.Products[wrap(idx+delta, len(cat.Products))]
		if err := m.sess.SelectProduct(next.ID); err != nil {
			m.setMessage(err.Error(), "error")
			return
		}
	case fieldColor:
		idx := 0
		for i, c := range cat.Colors {
			if c.Hex == m.sess.Color().Hex {
				idx = i
			}
		}
		if err := m.sess.SelectColor(cat.Colors[wrap(idx+delta, len(cat.Colors))].Hex); err != nil {
			m.setMessage(err.Error(), "error")
			return
		}
	case fieldSize:
		idx := 0
		for i, s := range cat.Sizes {
			if s == m.sess.Size() {
				idx = i
			}
		}
		if err := m.sess.SetSize(cat.Sizes[wrap(idx+delta, len(cat.Sizes))]); err != nil {
			m.setMessage(err.Error(), "error")
		}
		return
	default:
		return
	}

	m.refreshPreview()
}

// startLoad reads and decodes path off the UI goroutine
func (m *DesignerModel) startLoad(path string) tea.Cmd {
	if path == "" {
		m.setMessage("Enter a file path", "error")
		return nil
	}

	m.generation++
	m.loading = true
	m.setMessage("Loading "+filepath.Base(path)+"...", "info")

	gen := m.generation
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return designLoadedMsg{gen: gen, err: fmt.Errorf("failed to read design: %w", err)}
		}
		img, err := session.DecodeDesign(data)
		return designLoadedMsg{gen: gen, name: filepath.Base(path), data: data, img: img, err: err}
	}
}

func (m *DesignerModel) addToCart() tea.Cmd {
	item, err := m.sess.AddToCart()
	if err != nil {
		m.setMessage(err.Error(), "error")
		return nil
	}

	m.setMessage(fmt.Sprintf("Added %dx %s to cart", item.Quantity, session.DisplayName(item.Product)), "success")
	return func() tea.Msg { return cartChangedMsg{} }
}

func (m *DesignerModel) upload() tea.Cmd {
	if m.designData == nil || m.backend == nil {
		m.setMessage("Load a design first", "error")
		return nil
	}

	data, name := m.designData, m.sess.DesignName()
	m.setMessage("Uploading "+name+"...", "info")

	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := backend.UploadDesign(ctx, name, data)
		return designUploadedMsg{result: res, err: err}
	}
}

func (m *DesignerModel) setMessage(text, kind string) {
	m.message = text
	m.msgType = kind
}

// View renders the designer tab
func (m DesignerModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Customize Your Design"))
	b.WriteString("\n\n")

	p := m.sess.Product()
	col := m.sess.Color()

	m.writeField(&b, fieldProduct, "Product", fmt.Sprintf("‹ %s ›  %s", p.Name, p.Price))
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(col.Hex)).Render("  ")
	m.writeField(&b, fieldColor, "Color", fmt.Sprintf("‹ %s › ", col.Name)+swatch)
	m.writeField(&b, fieldSize, "Size", fmt.Sprintf("‹ %s ›", m.sess.Size()))
	m.writeField(&b, fieldQuantity, "Quantity", m.quantity.View())
	m.writeField(&b, fieldDesign, "Design file", m.path.View())

	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(InfoStyle.Render("Decoding design..."))
	case m.sess.HasDesign():
		b.WriteString(TextMuted.Render("Active design: ") + TextNormal.Render(m.sess.DesignName()))
	default:
		b.WriteString(TextMuted.Render("No design loaded"))
	}
	b.WriteString("\n\n")

	b.WriteString(TotalStyle.Render(fmt.Sprintf("Total: %s", m.sess.DisplayTotal())))
	b.WriteString(TextMuted.Render(fmt.Sprintf("  (%s × %d)", m.sess.Price(), m.sess.Quantity())))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(renderMessage(m.message, m.msgType))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.Help())

	form := lipgloss.NewStyle().Width(maxInt(30, m.width-m.previewCols-4)).Render(b.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, form, PreviewStyle.Render(m.preview))
}

func (m DesignerModel) writeField(b *strings.Builder, f designerField, label, value string) {
	labelStyle := InputLabelStyle
	cursor := "  "
	if m.focus == f {
		labelStyle = InputLabelFocusedStyle
		cursor = "▸ "
	}
	b.WriteString(cursor + labelStyle.Render(fmt.Sprintf("%-12s", label)) + value)
	b.WriteString("\n")
}

// Help returns help text for this tab
func (m DesignerModel) Help() string {
	if m.InputFocused() {
		return RenderHelp("↑/↓", "field") + "  " +
			RenderHelp("enter", "apply") + "  " +
			RenderHelp("esc", "leave field")
	}
	return RenderHelp("↑/↓", "field") + "  " +
		RenderHelp("←/→", "change") + "  " +
		RenderHelp("a", "add to cart") + "  " +
		RenderHelp("x", "reset design") + "  " +
		RenderHelp("u", "upload")
}

func renderMessage(text, kind string) string {
	switch kind {
	case "success":
		return SuccessStyle.Render("✓ " + text)
	case "error":
		return ErrorStyle.Render("✗ " + text)
	default:
		return InfoStyle.Render("ℹ " + text)
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
