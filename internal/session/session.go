// Package session holds the customizer's view-model: the current garment,
// color, size, quantity, active design and cart for one client session.
package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/twillco/storefront/internal/cart"
	"github.com/twillco/storefront/internal/renderer"
	"github.com/twillco/storefront/pkg/catalog"
)

var (
	// ErrNotImage is returned when an upload is not sniffed as an image
	ErrNotImage = errors.New("please upload an image file")
	// ErrTooLarge is returned when an upload exceeds catalog.MaxDesignBytes
	ErrTooLarge = errors.New("file size must be less than 5MB")
	// ErrNoDesign is returned when adding to cart without an active design
	ErrNoDesign = errors.New("please upload a design first")
	// ErrUnknownProduct is returned for a product id not in the catalog
	ErrUnknownProduct = errors.New("unknown product")
	// ErrUnknownColor is returned for a color not in the palette
	ErrUnknownColor = errors.New("unknown color")
	// ErrUnknownSize is returned for a size not offered
	ErrUnknownSize = errors.New("unknown size")
)

// Session is one customer's customizer state
type Session struct {
	cat      *catalog.Catalog
	renderer *renderer.Renderer
	cart     *cart.Cart

	product  *catalog.Product
	color    catalog.Color
	fill     color.NRGBA
	size     string
	quantity int

	design     image.Image
	designName string

	mu sync.RWMutex
}

// New creates a session on the catalog's first product and color
func New(cat *catalog.Catalog) *Session {
	s := &Session{
		cat:      cat,
		renderer: renderer.New(cat),
		cart:     cart.New(),
		product:  &cat.Products[0],
		quantity: 1,
	}

	s.color = cat.Colors[0]
	fill, err := catalog.ParseHex(s.color.Hex)
	if err != nil {
		// Validate has already rejected bad palette colors
		fill = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	s.fill = fill

	s.size = cat.Sizes[0]
	if cat.HasSize("M") {
		s.size = "M"
	}

	return s
}

// Catalog returns the catalog the session was built on
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// Cart returns the session's cart
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// SelectProduct switches the garment. The active design is kept and will
// be placed into the new product's design area on the next render.
func (s *Session) SelectProduct(id catalog.ProductType) error {
	p, ok := s.cat.Product(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}

	s.mu.Lock()
	s.product = p
	s.mu.Unlock()
	return nil
}

// SelectColor switches the fill color to a palette entry
func (s *Session) SelectColor(hex string) error {
	c, ok := s.cat.Color(hex)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColor, hex)
	}
	fill, err := catalog.ParseHex(c.Hex)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.color = *c
	s.fill = fill
	s.mu.Unlock()
	return nil
}

// SetSize selects one of the catalog sizes
func (s *Session) SetSize(size string) error {
	if !s.cat.HasSize(size) {
		return fmt.Errorf("%w: %s", ErrUnknownSize, size)
	}

	s.mu.Lock()
	s.size = size
	s.mu.Unlock()
	return nil
}

// SetQuantity parses user input; anything unparsable or below 1 becomes 1
func (s *Session) SetQuantity(input string) int {
	qty := catalog.ParseQuantity(input)

	s.mu.Lock()
	s.quantity = qty
	s.mu.Unlock()
	return qty
}

// Product returns the current product template
func (s *Session) Product() *catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.product
}

// Color returns the current palette entry
func (s *Session) Color() catalog.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// Size returns the selected size
func (s *Session) Size() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Quantity returns the selected quantity
func (s *Session) Quantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantity
}

// Price is the current product's unit price
func (s *Session) Price() catalog.Cents {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.product.Price
}

// LineTotal is unit price times quantity
func (s *Session) LineTotal() catalog.Cents {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.product.Price.Times(s.quantity)
}

// DisplayTotal is LineTotal formatted for the price label
func (s *Session) DisplayTotal() string {
	return catalog.FormatUSD(s.LineTotal())
}

// CheckDesign validates an upload without decoding it. Only the sniffed
// content type is trusted, never the file name.
func CheckDesign(data []byte) error {
	if len(data) > catalog.MaxDesignBytes {
		return ErrTooLarge
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return ErrNotImage
	}
	return nil
}

// DecodeDesign validates and decodes an upload. It does not touch any
// session so callers can run it off the UI goroutine.
func DecodeDesign(data []byte) (image.Image, error) {
	if err := CheckDesign(data); err != nil {
		return nil, err
	}
	return renderer.DecodeDesignBytes(data)
}

// LoadDesign validates, decodes and activates an upload. On any error the
// active design is left unchanged.
func (s *Session) LoadDesign(name string, data []byte) error {
	img, err := DecodeDesign(data)
	if err != nil {
		return err
	}

	s.SetDesign(name, img)
	return nil
}

// SetDesign activates an already decoded design, replacing the previous one
func (s *Session) SetDesign(name string, img image.Image) {
	s.mu.Lock()
	s.design = img
	s.designName = name
	s.mu.Unlock()
}

// ClearDesign removes the active design
func (s *Session) ClearDesign() {
	s.mu.Lock()
	s.design = nil
	s.designName = ""
	s.mu.Unlock()
}

// HasDesign reports whether a design is active
func (s *Session) HasDesign() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.design != nil
}

// DesignName is the file name of the active design
func (s *Session) DesignName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.designName
}

// Render draws the current product, color and design
func (s *Session) Render() image.Image {
	s.mu.RLock()
	p, fill, design := s.product, s.fill, s.design
	s.mu.RUnlock()

	return s.renderer.Render(p, fill, design)
}

// AddToCart snapshots the current preview and adds a line item
func (s *Session) AddToCart() (cart.Item, error) {
	s.mu.RLock()
	p, col, size, qty, hasDesign := s.product, s.color, s.size, s.quantity, s.design != nil
	s.mu.RUnlock()

	if !hasDesign {
		return cart.Item{}, ErrNoDesign
	}

	preview, err := renderer.DataURL(s.Render())
	if err != nil {
		return cart.Item{}, fmt.Errorf("failed to snapshot preview: %w", err)
	}

	item := s.cart.Add(cart.Item{
		Product:  p.ID,
		Color:    col.Hex,
		Size:     size,
		Quantity: qty,
		Price:    p.Price,
		Preview:  preview,
	})
	return item, nil
}

// RemoveFromCart removes a line item by id
func (s *Session) RemoveFromCart(id int64) bool {
	return s.cart.Remove(id)
}

// CartCount is the number of units in the cart
func (s *Session) CartCount() int {
	return s.cart.Count()
}

// DisplayName capitalizes a product id for cart lines ("hoodie" -> "Hoodie")
func DisplayName(id catalog.ProductType) string {
	s := string(id)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
