package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/twillco/storefront/pkg/catalog"
)

const (
	labelWidth  = 600
	labelHeight = 400
	labelMargin = 20.0
)

// LabelData is what gets printed on a packing label
type LabelData struct {
	OrderID   string
	Status    string
	Amount    catalog.Cents
	Customer  string
	Email     string
	Address   string
	ItemCount string
	StatusURL string
}

// label lays out a packing label top to bottom
type label struct {
	width int
	ctx   *gg.Context
	y     float64 // Current Y position
}

// RenderLabel renders a packing label with a Code128 barcode of the order id
// and a QR code of the status URL
func RenderLabel(data LabelData) (image.Image, error) {
	ctx := gg.NewContext(labelWidth, labelHeight)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.SetColor(color.Black)

	l := &label{width: labelWidth, ctx: ctx, y: labelMargin}

	// QR sits in the top-right corner, text flows to its left
	qrSize := 140
	if data.StatusURL != "" {
		if err := l.drawQRCode(data.StatusURL, qrSize, labelWidth-qrSize-int(labelMargin), int(labelMargin)); err != nil {
			return nil, fmt.Errorf("failed to render QR code: %w", err)
		}
	}

	l.drawText("Twill T-Shirt Co", 28, "left")
	l.drawText("Order "+data.OrderID, 16, "left")
	if data.Status != "" {
		l.drawText("Status: "+data.Status, 16, "left")
	}
	l.drawText("Total: "+catalog.FormatUSD(data.Amount), 16, "left")
	if data.ItemCount != "" {
		l.drawText("Items: "+data.ItemCount, 16, "left")
	}

	if l.y < labelMargin+float64(qrSize) {
		l.y = labelMargin + float64(qrSize)
	}
	l.drawDivider("dashed")

	l.drawText("Ship to: "+data.Customer, 18, "left")
	if data.Address != "" {
		l.drawText(data.Address, 16, "left")
	}
	if data.Email != "" {
		l.drawText(data.Email, 14, "left")
	}

	if data.OrderID != "" {
		if err := l.drawBarcode(data.OrderID, 60); err != nil {
			return nil, fmt.Errorf("failed to render barcode: %w", err)
		}
	}

	return ctx.Image(), nil
}
