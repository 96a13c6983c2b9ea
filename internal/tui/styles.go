package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Shop palette: navy brand color on warm neutrals
var (
	Primary   = lipgloss.Color("#1E3A8A") // Navy
	Secondary = lipgloss.Color("#38BDF8") // Sky
	Success   = lipgloss.Color("#22C55E")
	Warning   = lipgloss.Color("#EAB308")
	Error     = lipgloss.Color("#DC2626")
	Muted     = lipgloss.Color("#78716C") // Stone 500

	BgCard    = lipgloss.Color("#292524") // Stone 800
	BgHover   = lipgloss.Color("#44403C") // Stone 700
	BgSidebar = lipgloss.Color("#1C1917") // Stone 900
	BgConsole = lipgloss.Color("#0C0A09") // Stone 950

	colorTextBright = lipgloss.Color("#F7F7F5")
	colorTextNormal = lipgloss.Color("#D6D3D1")
	colorTextMuted  = lipgloss.Color("#A8A29E")
)

var (
	TextNormal = lipgloss.NewStyle().Foreground(colorTextNormal)
	TextMuted  = lipgloss.NewStyle().Foreground(colorTextMuted)
)

// Layout
var (
	SidebarStyle = lipgloss.NewStyle().
			Background(BgSidebar).
			Foreground(colorTextNormal).
			Padding(1, 0).
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(BgHover)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	SidebarActiveStyle = lipgloss.NewStyle().
				Foreground(colorTextBright).
				Background(Primary).
				Bold(true)

	ContentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	LogoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTextBright)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			MarginBottom(1)

	// Cart lines
	ListItemStyle = lipgloss.NewStyle().
			Foreground(colorTextNormal).
			PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(colorTextBright).
				Background(BgHover).
				Bold(true).
				PaddingLeft(2)

	TotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTextBright)

	// Garment preview frame
	PreviewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BgHover)
)

// Checkout form
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	InputFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Secondary).
				Padding(0, 1)

	InputLabelStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	InputLabelFocusedStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(colorTextBright).
			Background(Primary).
			Padding(0, 3).
			MarginTop(1)

	ButtonInactiveStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Background(BgCard).
				Padding(0, 3).
				MarginTop(1)
)

// Feedback
var (
	helpStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	statusGood    = lipgloss.NewStyle().Foreground(Success).SetString("●")
	statusBad     = lipgloss.NewStyle().Foreground(Error).SetString("●")
	statusPending = lipgloss.NewStyle().Foreground(Warning).SetString("●")
)

// RenderHelp renders a "key desc" hint
func RenderHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + helpStyle.Render(" "+desc)
}

// StatusIcon maps checkout and payment states to a colored dot
func StatusIcon(status string) string {
	switch status {
	case "succeeded":
		return statusGood.String()
	case "failed", "payment_failed", "canceled":
		return statusBad.String()
	default:
		return statusPending.String()
	}
}

// Truncate shortens s to max runes
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
