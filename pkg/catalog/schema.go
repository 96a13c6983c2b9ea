// Package catalog defines the product templates offered by the customizer
package catalog

// ProductType identifies one of the garments in the catalog
type ProductType string

const (
	TShirt     ProductType = "tshirt"
	Hoodie     ProductType = "hoodie"
	Sweatshirt ProductType = "sweatshirt"
	Tank       ProductType = "tank"
)

// Catalog is the root structure of catalog.yaml
type Catalog struct {
	Currency      string    `yaml:"currency" json:"currency"`
	Outline       Stroke    `yaml:"outline" json:"outline"`
	DesignOpacity float64   `yaml:"designOpacity" json:"designOpacity"`
	Products      []Product `yaml:"products" json:"products"`
	Colors        []Color   `yaml:"colors" json:"colors"`
	Sizes         []string  `yaml:"sizes" json:"sizes"`
}

// Stroke is the outline drawn around every silhouette
type Stroke struct {
	Color string  `yaml:"color" json:"color"`
	Width float64 `yaml:"width" json:"width"`
}

// Product is a ProductTemplate: canvas size, design rectangle and silhouette
type Product struct {
	ID         ProductType `yaml:"id" json:"id"`
	Name       string      `yaml:"name" json:"name"`
	Price      Cents       `yaml:"price" json:"price"`
	Width      int         `yaml:"width" json:"width"`
	Height     int         `yaml:"height" json:"height"`
	DesignArea Rect        `yaml:"designArea" json:"designArea"`
	Outline    []Point     `yaml:"outline" json:"outline"`
	Circles    []Circle    `yaml:"circles,omitempty" json:"circles,omitempty"`
}

// Rect is an axis-aligned rectangle in canvas pixels
type Rect struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Point is a polygon vertex, written as [x, y] in YAML
type Point [2]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

// Circle is an extra closed sub-path (the hoodie's hood opening)
type Circle struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	R float64 `yaml:"r" json:"r"`
}

// Color is one swatch of the fixed palette
type Color struct {
	Name string `yaml:"name" json:"name"`
	Hex  string `yaml:"hex" json:"hex"`
}

// Product returns the template for id, or false when the catalog does not carry it
func (c *Catalog) Product(id ProductType) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// Color returns the palette entry matching hex (case-insensitive)
func (c *Catalog) Color(hex string) (*Color, bool) {
	norm := normalizeHex(hex)
	for i := range c.Colors {
		if normalizeHex(c.Colors[i].Hex) == norm {
			return &c.Colors[i], true
		}
	}
	return nil, false
}

// HasSize reports whether size is one of the offered sizes
func (c *Catalog) HasSize(size string) bool {
	for _, s := range c.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
