package renderer

import (
	"os"

	"golang.org/x/image/font/basicfont"
)

var systemFonts = []string{
	"/System/Library/Fonts/Helvetica.ttc",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}

func (l *label) drawText(text string, size float64, align string) {
	l.loadFont(size)

	textWidth, textHeight := l.ctx.MeasureString(text)

	var x float64
	switch align {
	case "center":
		x = float64(l.width)/2 - textWidth/2
	case "right":
		x = float64(l.width) - textWidth - labelMargin
	default: // left
		x = labelMargin
	}

	l.ctx.DrawString(text, x, l.y+textHeight)

	l.y += textHeight + 8
}

// loadFont loads the first available system font at size, falling back to
// a fixed bitmap face when none is installed
func (l *label) loadFont(size float64) {
	for _, path := range systemFonts {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := l.ctx.LoadFontFace(path, size); err == nil {
			return
		}
	}

	l.ctx.SetFontFace(basicfont.Face7x13)
}
