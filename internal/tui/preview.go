package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// previewBackground shows through transparent canvas pixels
var previewBackground = color.NRGBA{R: 0x0F, G: 0x17, B: 0x2A, A: 0xff}

// HalfBlocks renders img as terminal art cols cells wide. Each cell draws
// two vertically stacked pixels with the upper half block glyph.
func HalfBlocks(img image.Image, cols int) string {
	if img == nil || cols <= 0 {
		return ""
	}

	small := imaging.Resize(img, cols, 0, imaging.Box)
	b := small.Bounds()
	rows := b.Dy() / 2
	if rows == 0 {
		rows = 1
	}

	flat := imaging.New(b.Dx(), rows*2, previewBackground)
	flat = imaging.Overlay(flat, small, image.Pt(0, 0), 1.0)

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < b.Dx(); x++ {
			top := flat.NRGBAAt(x, y*2)
			bottom := flat.NRGBAAt(x, y*2+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexOf(top))).
				Background(lipgloss.Color(hexOf(bottom))).
				Render("▀"))
		}
		if y < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexOf(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// previewColumns picks a preview width that leaves room for the form
func previewColumns(contentWidth, contentHeight int) int {
	cols := contentWidth / 2
	// Rows are 1.2 * cols / 2 for the 500x600 canvas
	if maxCols := (contentHeight - 4) * 5 / 3; cols > maxCols {
		cols = maxCols
	}
	if cols < 10 {
		cols = 10
	}
	return cols
}
