package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/twillco/storefront/pkg/catalog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable is returned when a design file is not a decodable bitmap
var ErrUndecodable = errors.New("image could not be decoded")

// Rect is a floating-point placement rectangle in canvas pixels
type Rect struct {
	X, Y, Width, Height float64
}

// Bounds rounds the placement to whole pixels
func (r Rect) Bounds() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	return image.Rect(x0, y0, x0+int(math.Round(r.Width)), y0+int(math.Round(r.Height)))
}

// Placement fits an imgW x imgH image into area, preserving aspect ratio and
// centering on the axis that has slack.
func Placement(area catalog.Rect, imgW, imgH int) Rect {
	place := Rect{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height}
	if imgW <= 0 || imgH <= 0 {
		return place
	}

	imgAspect := float64(imgW) / float64(imgH)
	areaAspect := area.Width / area.Height

	if imgAspect > areaAspect {
		place.Height = area.Width / imgAspect
		place.Y = area.Y + (area.Height-place.Height)/2
	} else {
		place.Width = area.Height * imgAspect
		place.X = area.X + (area.Width-place.Width)/2
	}

	return place
}

// DecodeDesign decodes an uploaded design, applying EXIF orientation
func DecodeDesign(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, nil
}

// DecodeDesignBytes is DecodeDesign for an in-memory file
func DecodeDesignBytes(data []byte) (image.Image, error) {
	return DecodeDesign(bytes.NewReader(data))
}
