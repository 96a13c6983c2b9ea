package renderer

func (l *label) drawDivider(style string) {
	if style == "" {
		style = "solid"
	}

	y := l.y + 7
	x1 := labelMargin
	x2 := float64(l.width) - labelMargin

	l.ctx.SetLineWidth(2)

	switch style {
	case "solid":
		l.ctx.DrawLine(x1, y, x2, y)
		l.ctx.Stroke()

	case "dashed":
		dashLength := 10.0
		gapLength := 5.0
		x := x1
		for x < x2 {
			endX := x + dashLength
			if endX > x2 {
				endX = x2
			}
			l.ctx.DrawLine(x, y, endX, y)
			l.ctx.Stroke()
			x += dashLength + gapLength
		}
	}

	l.y += 15
}
