package renderer

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/twillco/storefront/pkg/catalog"
)

func (r *Renderer) drawSilhouette(ctx *gg.Context, p *catalog.Product, fill color.Color) {
	tracePath(ctx, p)

	// Stroke first, then fill over it, so the outline shows only outside the fill
	ctx.SetColor(r.outline)
	ctx.SetLineWidth(r.outlineWidth)
	ctx.SetLineJoinRound()
	ctx.StrokePreserve()

	ctx.SetColor(fill)
	ctx.Fill()
}

func tracePath(ctx *gg.Context, p *catalog.Product) {
	ctx.NewSubPath()
	for i, pt := range p.Outline {
		if i == 0 {
			ctx.MoveTo(pt.X(), pt.Y())
			continue
		}
		ctx.LineTo(pt.X(), pt.Y())
	}
	ctx.ClosePath()

	for _, c := range p.Circles {
		ctx.DrawCircle(c.X, c.Y, c.R)
	}
}
