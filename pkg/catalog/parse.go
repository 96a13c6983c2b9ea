package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// MaxDesignBytes is the largest design image accepted, client and server side
const MaxDesignBytes = 5 * 1024 * 1024

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded table is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Parse parses a catalog from YAML and validates it
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if c.Outline.Color == "" {
		c.Outline.Color = "#999999"
	}
	if c.Outline.Width == 0 {
		c.Outline.Width = 2
	}
	if c.DesignOpacity == 0 {
		c.DesignOpacity = 0.9
	}
	if c.Currency == "" {
		c.Currency = "usd"
	}

	if err := Validate(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// ParseFile parses a catalog file from disk
func ParseFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return Parse(data)
}
