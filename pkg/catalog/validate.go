package catalog

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Validate validates a Catalog structure
func Validate(c *Catalog) error {
	if len(c.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	if c.DesignOpacity <= 0 || c.DesignOpacity > 1 {
		return fmt.Errorf("designOpacity must be in (0, 1], got %v", c.DesignOpacity)
	}

	if _, err := ParseHex(c.Outline.Color); err != nil {
		return fmt.Errorf("outline: %w", err)
	}

	ids := make(map[ProductType]bool)
	for i := range c.Products {
		p := &c.Products[i]
		if p.ID == "" {
			return fmt.Errorf("product[%d]: 'id' is required", i)
		}
		if ids[p.ID] {
			return fmt.Errorf("product[%d]: duplicate product id '%s'", i, p.ID)
		}
		ids[p.ID] = true

		if err := validateProduct(p); err != nil {
			return fmt.Errorf("product[%d] '%s': %w", i, p.ID, err)
		}
	}

	if len(c.Colors) == 0 {
		return fmt.Errorf("at least one color is required")
	}
	seen := make(map[string]bool)
	for i, col := range c.Colors {
		if _, err := ParseHex(col.Hex); err != nil {
			return fmt.Errorf("color[%d]: %w", i, err)
		}
		key := normalizeHex(col.Hex)
		if seen[key] {
			return fmt.Errorf("color[%d]: duplicate color '%s'", i, col.Hex)
		}
		seen[key] = true
	}

	if len(c.Sizes) == 0 {
		return fmt.Errorf("at least one size is required")
	}

	return nil
}

func validateProduct(p *Product) error {
	if p.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if p.Price > MaxPrice {
		return fmt.Errorf("price %s exceeds %s", p.Price, MaxPrice)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("canvas size must be positive")
	}
	if len(p.Outline) < 3 {
		return fmt.Errorf("outline needs at least 3 points, got %d", len(p.Outline))
	}

	a := p.DesignArea
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("designArea must have a positive size")
	}
	if a.X < 0 || a.Y < 0 || a.X+a.Width > float64(p.Width) || a.Y+a.Height > float64(p.Height) {
		return fmt.Errorf("designArea %+v exceeds the %dx%d canvas", a, p.Width, p.Height)
	}

	for j, pt := range p.Outline {
		if pt.X() < 0 || pt.Y() < 0 || pt.X() > float64(p.Width) || pt.Y() > float64(p.Height) {
			return fmt.Errorf("outline[%d] (%v, %v) is outside the canvas", j, pt.X(), pt.Y())
		}
	}
	for j, c := range p.Circles {
		if c.R <= 0 {
			return fmt.Errorf("circle[%d]: radius must be positive", j)
		}
	}

	return nil
}

// ParseHex parses "#RRGGBB" or "#RGB" into an opaque color
func ParseHex(hex string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color '%s'", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color '%s'", hex)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func normalizeHex(hex string) string {
	c, err := ParseHex(hex)
	if err != nil {
		return strings.ToUpper(hex)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
