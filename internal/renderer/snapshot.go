package renderer

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"io"
)

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// DataURL encodes img as a "data:image/png;base64," URL, the snapshot format
// stored on cart items
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
