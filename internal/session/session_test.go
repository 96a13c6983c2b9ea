package session

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/twillco/storefront/internal/renderer"
	"github.com/twillco/storefront/pkg/catalog"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestNew_Defaults(t *testing.T) {
	s := New(catalog.Default())

	if s.Product().ID != catalog.TShirt {
		t.Errorf("Expected tshirt, got %s", s.Product().ID)
	}
	if s.Color().Hex != "#FFFFFF" {
		t.Errorf("Expected white, got %s", s.Color().Hex)
	}
	if s.Size() != "M" {
		t.Errorf("Expected size M, got %s", s.Size())
	}
	if s.DisplayTotal() != "$19.99" {
		t.Errorf("Expected $19.99, got %s", s.DisplayTotal())
	}
}

func TestHoodieQuantityTwo(t *testing.T) {
	s := New(catalog.Default())

	if err := s.SelectProduct(catalog.Hoodie); err != nil {
		t.Fatalf("SelectProduct failed: %v", err)
	}
	s.SetQuantity("2")

	if got := s.DisplayTotal(); got != "$69.98" {
		t.Errorf("Expected $69.98, got %s", got)
	}

	if err := s.LoadDesign("logo.png", pngBytes(t, 40, 40, color.Black)); err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	item, err := s.AddToCart()
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if s.CartCount() != 2 {
		t.Errorf("Expected cart count 2, got %d", s.CartCount())
	}
	items := s.Cart().List()
	if len(items) != 1 {
		t.Fatalf("Expected 1 line item, got %d", len(items))
	}
	if items[0].Total != 6998 || item.Total != 6998 {
		t.Errorf("Expected line total 6998, got %d", items[0].Total)
	}
	if !strings.HasPrefix(item.Preview, "data:image/png;base64,") {
		t.Error("Expected a PNG data URL preview")
	}
}

func TestSetQuantity_Coerces(t *testing.T) {
	s := New(catalog.Default())

	tests := []struct {
		input string
		want  int
	}{
		{"3", 3},
		{"0", 1},
		{"-4", 1},
		{"abc", 1},
		{"", 1},
		{"1000000", catalog.MaxQuantity},
	}

	for _, tt := range tests {
		if got := s.SetQuantity(tt.input); got != tt.want {
			t.Errorf("SetQuantity(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAddToCart_RequiresDesign(t *testing.T) {
	s := New(catalog.Default())

	_, err := s.AddToCart()
	if !errors.Is(err, ErrNoDesign) {
		t.Errorf("Expected ErrNoDesign, got %v", err)
	}
	if s.Cart().Len() != 0 {
		t.Error("Expected cart to stay empty")
	}
}

func TestLoadDesign_RejectsNonImage(t *testing.T) {
	s := New(catalog.Default())
	if err := s.LoadDesign("a.png", pngBytes(t, 10, 10, color.White)); err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	err := s.LoadDesign("notes.png", []byte("just some text, not a picture"))
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
	if s.DesignName() != "a.png" {
		t.Errorf("Expected active design unchanged, got %q", s.DesignName())
	}
}

func TestLoadDesign_RejectsOversize(t *testing.T) {
	s := New(catalog.Default())

	data := append(pngBytes(t, 2, 2, color.White), make([]byte, catalog.MaxDesignBytes)...)
	err := s.LoadDesign("huge.png", data)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
	if s.HasDesign() {
		t.Error("Expected no active design")
	}
}

func TestLoadDesign_UndecodableKeepsActive(t *testing.T) {
	s := New(catalog.Default())
	if err := s.LoadDesign("a.png", pngBytes(t, 10, 10, color.White)); err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	// A PNG signature followed by garbage sniffs as an image but cannot decode
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xAB}, 64)...)
	err := s.LoadDesign("broken.png", corrupt)
	if !errors.Is(err, renderer.ErrUndecodable) {
		t.Errorf("Expected ErrUndecodable, got %v", err)
	}
	if s.DesignName() != "a.png" {
		t.Errorf("Expected active design unchanged, got %q", s.DesignName())
	}
}

func TestSelectProduct_KeepsDesign(t *testing.T) {
	s := New(catalog.Default())
	if err := s.SelectColor("#dc2626"); err != nil {
		t.Fatalf("SelectColor failed: %v", err)
	}
	if err := s.LoadDesign("blue.png", pngBytes(t, 20, 20, color.NRGBA{B: 255, A: 255})); err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	if err := s.SelectProduct(catalog.Hoodie); err != nil {
		t.Fatalf("SelectProduct failed: %v", err)
	}

	if !s.HasDesign() {
		t.Fatal("Expected design to survive product switch")
	}

	// Inside the hoodie's design area, below the t-shirt's
	c := color.NRGBAModel.Convert(s.Render().At(250, 365)).(color.NRGBA)
	if c.B < 200 {
		t.Errorf("Expected design drawn in hoodie area, got %v", c)
	}
}

func TestSelect_RejectsUnknown(t *testing.T) {
	s := New(catalog.Default())

	if err := s.SelectProduct("poncho"); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("Expected ErrUnknownProduct, got %v", err)
	}
	if err := s.SelectColor("#123456"); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("Expected ErrUnknownColor, got %v", err)
	}
	if err := s.SetSize("XS"); !errors.Is(err, ErrUnknownSize) {
		t.Errorf("Expected ErrUnknownSize, got %v", err)
	}
	if s.Product().ID != catalog.TShirt || s.Size() != "M" {
		t.Error("Expected selection unchanged after rejected input")
	}
}

func TestClearDesign(t *testing.T) {
	s := New(catalog.Default())
	if err := s.LoadDesign("a.png", pngBytes(t, 4, 4, color.Black)); err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	s.ClearDesign()

	if s.HasDesign() {
		t.Error("Expected design cleared")
	}
	if _, err := s.AddToCart(); !errors.Is(err, ErrNoDesign) {
		t.Errorf("Expected ErrNoDesign after clear, got %v", err)
	}
}

func TestRemoveFromCart(t *testing.T) {
	s := New(catalog.Default())
	if err := s.LoadDesign("a.png", pngBytes(t, 4, 4, color.Black)); err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}
	a, _ := s.AddToCart()
	s.SetQuantity("3")
	b, _ := s.AddToCart()

	if s.RemoveFromCart(999) {
		t.Error("Expected unknown id to be a no-op")
	}
	if !s.RemoveFromCart(a.ID) {
		t.Fatal("Expected removal")
	}

	if s.Cart().Total() != b.Total {
		t.Errorf("Expected total %d, got %d", b.Total, s.Cart().Total())
	}
	if s.CartCount() != 3 {
		t.Errorf("Expected count 3, got %d", s.CartCount())
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(catalog.Hoodie); got != "Hoodie" {
		t.Errorf("Expected Hoodie, got %s", got)
	}
}

func TestNew_UnparsableFirstColorFallsBackToWhite(t *testing.T) {
	cat := *catalog.Default()
	cat.Colors = append([]catalog.Color(nil), cat.Colors...)
	cat.Colors[0].Hex = "not-a-color"

	s := New(&cat)
	a := s.Product().DesignArea
	_, _, _, alpha := s.Render().At(int(a.X+a.Width/2), int(a.Y+a.Height/2)).RGBA()
	if alpha != 0xffff {
		t.Errorf("Expected an opaque garment fill, got alpha %#x", alpha)
	}
}
