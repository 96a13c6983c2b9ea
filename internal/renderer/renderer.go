// Package renderer draws garment previews and packing labels
package renderer

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/twillco/storefront/pkg/catalog"
)

// Renderer composites designs onto garment silhouettes
type Renderer struct {
	outline       color.NRGBA
	outlineWidth  float64
	designOpacity float64
}

// New creates a renderer using the catalog's outline and opacity settings
func New(cat *catalog.Catalog) *Renderer {
	outline, err := catalog.ParseHex(cat.Outline.Color)
	if err != nil {
		// Validate has already rejected bad outline colors
		outline = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	}

	return &Renderer{
		outline:       outline,
		outlineWidth:  cat.Outline.Width,
		designOpacity: cat.DesignOpacity,
	}
}

// Render draws the product silhouette filled with fill and, when design is
// non-nil, letterboxes the design into the product's design area. Calling it
// repeatedly with the same inputs yields the same image.
func (r *Renderer) Render(p *catalog.Product, fill color.Color, design image.Image) image.Image {
	ctx := gg.NewContext(p.Width, p.Height)

	r.drawSilhouette(ctx, p, fill)

	if design == nil {
		return ctx.Image()
	}

	return r.drawDesign(ctx.Image(), p.DesignArea, design)
}

func (r *Renderer) drawDesign(base image.Image, area catalog.Rect, design image.Image) image.Image {
	b := design.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return base
	}

	place := Placement(area, b.Dx(), b.Dy())
	dst := place.Bounds()
	if dst.Dx() <= 0 || dst.Dy() <= 0 {
		return base
	}

	scaled := imaging.Resize(design, dst.Dx(), dst.Dy(), imaging.Lanczos)

	return imaging.Overlay(base, scaled, dst.Min, r.designOpacity)
}
