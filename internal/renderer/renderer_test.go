package renderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/twillco/storefront/pkg/catalog"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPlacement_WideImage(t *testing.T) {
	area := catalog.Rect{X: 150, Y: 150, Width: 200, Height: 200}

	got := Placement(area, 400, 100)

	if !near(got.Width, 200) || !near(got.Height, 50) {
		t.Errorf("Expected 200x50, got %vx%v", got.Width, got.Height)
	}
	if !near(got.X, 150) || !near(got.Y, 225) {
		t.Errorf("Expected origin (150,225), got (%v,%v)", got.X, got.Y)
	}
}

func TestPlacement_TallImage(t *testing.T) {
	area := catalog.Rect{X: 150, Y: 150, Width: 200, Height: 200}

	got := Placement(area, 100, 400)

	if !near(got.Width, 50) || !near(got.Height, 200) {
		t.Errorf("Expected 50x200, got %vx%v", got.Width, got.Height)
	}
	if !near(got.X, 225) || !near(got.Y, 150) {
		t.Errorf("Expected origin (225,150), got (%v,%v)", got.X, got.Y)
	}
}

func TestPlacement_SquareImageFillsArea(t *testing.T) {
	area := catalog.Rect{X: 150, Y: 180, Width: 200, Height: 200}

	got := Placement(area, 64, 64)

	want := Rect{X: 150, Y: 180, Width: 200, Height: 200}
	if got != want {
		t.Errorf("Placement = %+v, want %+v", got, want)
	}
}

func TestRender_FillsSilhouette(t *testing.T) {
	cat := catalog.Default()
	r := New(cat)
	p, _ := cat.Product(catalog.TShirt)

	img := r.Render(p, color.NRGBA{R: 255, A: 255}, nil)

	if img.Bounds().Dx() != 500 || img.Bounds().Dy() != 600 {
		t.Fatalf("Expected 500x600 canvas, got %v", img.Bounds())
	}

	inside := pixel(img, 250, 300)
	if inside.R != 255 || inside.G != 0 || inside.B != 0 || inside.A != 255 {
		t.Errorf("Expected red fill inside silhouette, got %v", inside)
	}

	outside := pixel(img, 10, 10)
	if outside.A != 0 {
		t.Errorf("Expected transparent background, got %v", outside)
	}
}

func TestRender_CompositesDesign(t *testing.T) {
	cat := catalog.Default()
	r := New(cat)
	p, _ := cat.Product(catalog.TShirt)

	design := solidImage(20, 20, color.NRGBA{B: 255, A: 255})
	img := r.Render(p, color.NRGBA{R: 255, A: 255}, design)

	// Center of the t-shirt design area
	c := pixel(img, 250, 250)
	if c.B < 200 || c.R > 60 {
		t.Errorf("Expected design blended at 0.9 opacity over fill, got %v", c)
	}

	// Below the design area the fill is untouched
	below := pixel(img, 250, 400)
	if below.R != 255 || below.B != 0 {
		t.Errorf("Expected plain fill below design area, got %v", below)
	}
}

func TestRender_SwitchProductMovesDesign(t *testing.T) {
	cat := catalog.Default()
	r := New(cat)
	design := solidImage(20, 20, color.NRGBA{B: 255, A: 255})
	fill := color.NRGBA{R: 255, A: 255}

	tshirt, _ := cat.Product(catalog.TShirt)
	hoodie, _ := cat.Product(catalog.Hoodie)

	// y=365 is inside the hoodie's design area (180..380) but below the
	// t-shirt's (150..350)
	onShirt := pixel(r.Render(tshirt, fill, design), 250, 365)
	onHoodie := pixel(r.Render(hoodie, fill, design), 250, 365)

	if onShirt.B != 0 {
		t.Errorf("Expected plain fill on t-shirt at y=365, got %v", onShirt)
	}
	if onHoodie.B < 200 {
		t.Errorf("Expected design on hoodie at y=365, got %v", onHoodie)
	}
}

func TestRender_Idempotent(t *testing.T) {
	cat := catalog.Default()
	r := New(cat)
	p, _ := cat.Product(catalog.Hoodie)
	design := solidImage(30, 10, color.NRGBA{G: 200, A: 255})

	var a, b bytes.Buffer
	if err := EncodePNG(&a, r.Render(p, color.White, design)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := EncodePNG(&b, r.Render(p, color.White, design)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("Expected identical output for identical inputs")
	}
}

func TestDecodeDesign(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(8, 4, color.Black)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := DecodeDesignBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("Expected 8x4, got %v", img.Bounds())
	}

	_, err = DecodeDesignBytes([]byte("<svg xmlns='http://www.w3.org/2000/svg'></svg>"))
	if !errors.Is(err, ErrUndecodable) {
		t.Errorf("Expected ErrUndecodable, got %v", err)
	}
}

func TestDataURL(t *testing.T) {
	url, err := DataURL(solidImage(2, 2, color.White))
	if err != nil {
		t.Fatalf("DataURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("Unexpected data URL prefix: %.30s", url)
	}
}

func TestRenderLabel(t *testing.T) {
	img, err := RenderLabel(LabelData{
		OrderID:   "pi_3Abc123",
		Status:    "succeeded",
		Amount:    6998,
		Customer:  "Ada Lovelace",
		Email:     "ada@example.com",
		Address:   "12 St James's Square, London",
		ItemCount: "1",
		StatusURL: "http://localhost:3000/order-status/pi_3Abc123",
	})
	if err != nil {
		t.Fatalf("RenderLabel failed: %v", err)
	}

	if img.Bounds().Dx() != labelWidth || img.Bounds().Dy() != labelHeight {
		t.Errorf("Expected %dx%d label, got %v", labelWidth, labelHeight, img.Bounds())
	}
}
