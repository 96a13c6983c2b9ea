package renderer

import (
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"
)

func (l *label) drawBarcode(value string, height int) error {
	code, err := code128.Encode(value)
	if err != nil {
		return err
	}

	// Code128 needs at least one pixel per module
	targetWidth := l.width - int(2*labelMargin)
	if targetWidth < code.Bounds().Dx() {
		targetWidth = code.Bounds().Dx()
	}

	scaled, err := barcode.Scale(code, targetWidth, height)
	if err != nil {
		return err
	}

	x := (l.width - scaled.Bounds().Dx()) / 2
	l.ctx.DrawImage(scaled, x, int(l.y))

	l.y += float64(scaled.Bounds().Dy()) + 10

	return nil
}

func (l *label) drawQRCode(value string, size, x, y int) error {
	qr, err := qrcode.New(value, qrcode.Medium)
	if err != nil {
		return err
	}

	l.ctx.DrawImage(qr.Image(size), x, y)

	return nil
}
