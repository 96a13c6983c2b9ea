package api

import (
	"errors"
	"image"
	"log"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/twillco/storefront/internal/renderer"
	"github.com/twillco/storefront/internal/upload"
	"github.com/twillco/storefront/pkg/catalog"
)

// handleUploadDesign stores the multipart file field "design"
func (s *Server) handleUploadDesign(c *gin.Context) {
	header, err := c.FormFile("design")
	if err != nil {
		if isBodyTooLarge(err) {
			c.JSON(400, gin.H{"error": "File too large"})
			return
		}
		c.JSON(400, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	entry, err := s.uploads.Save(header.Filename, header.Size, file)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		c.JSON(400, gin.H{"error": "File too large"})
		return
	case errors.Is(err, upload.ErrUnsupportedType):
		c.JSON(400, gin.H{"error": "Only image files are allowed"})
		return
	case err != nil:
		log.Printf("❌ Upload failed: %v", err)
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	log.Printf("🖼️  Design uploaded: %s (%s, %d bytes)", entry.Filename, entry.ContentType, entry.Size)
	s.hub.Broadcast(WSMessage{
		Event: EventDesignUploaded,
		Data: map[string]interface{}{
			"filename": entry.Filename,
			"path":     entry.Path(),
		},
	})

	c.JSON(200, gin.H{
		"success":  true,
		"filename": entry.Filename,
		"path":     entry.Path(),
	})
}

// handleGetUpload serves a stored design
func (s *Server) handleGetUpload(c *gin.Context) {
	p, err := s.uploads.Path(c.Param("filename"))
	if err != nil {
		c.JSON(404, gin.H{"error": "file not found"})
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	if strings.EqualFold(filepath.Ext(p), ".svg") {
		// Scripts in an uploaded SVG must not run on this origin
		c.Header("Content-Security-Policy", svgPolicy)
	}
	c.File(p)
}

const svgPolicy = "sandbox; default-src 'none'; style-src 'unsafe-inline'"


// handleGetCatalog returns products, colors and sizes
func (s *Server) handleGetCatalog(c *gin.Context) {
	c.JSON(200, s.cat)
}

// handlePreview renders a product in a color, optionally with a stored design
func (s *Server) handlePreview(c *gin.Context) {
	productID := catalog.ProductType(c.DefaultQuery("product", string(catalog.TShirt)))
	product, ok := s.cat.Product(productID)
	if !ok {
		c.JSON(400, gin.H{"error": "unknown product"})
		return
	}

	swatch, ok := s.cat.Color(c.DefaultQuery("color", s.cat.Colors[0].Hex))
	if !ok {
		c.JSON(400, gin.H{"error": "unknown color"})
		return
	}
	fill, err := catalog.ParseHex(swatch.Hex)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	var design image.Image
	if name := c.Query("design"); name != "" {
		data, err := s.uploads.Read(name)
		if err != nil {
			c.JSON(404, gin.H{"error": "design not found"})
			return
		}
		design, err = renderer.DecodeDesignBytes(data)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
	}

	img := s.renderer.Render(product, fill, design)

	c.Header("Content-Type", "image/png")
	c.Status(200)
	if err := renderer.EncodePNG(c.Writer, img); err != nil {
		log.Printf("❌ Failed to write preview: %v", err)
	}
}
