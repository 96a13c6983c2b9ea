package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/twillco/storefront/internal/renderer"
	"github.com/twillco/storefront/internal/session"
	"github.com/twillco/storefront/pkg/catalog"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a garment preview to a PNG file",
		Example: `  storefront render --product hoodie --color "#000000" --design logo.png -o hoodie.png
  storefront render --catalog ./catalog.yaml --product tank`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}

	cmd.Flags().String("product", string(catalog.TShirt), "Product id (tshirt, hoodie, sweatshirt, tank)")
	cmd.Flags().String("color", "", "Garment color hex (defaults to the first palette color)")
	cmd.Flags().String("design", "", "Design image to place on the garment")
	cmd.Flags().String("catalog", "", "Catalog YAML file (defaults to the built-in catalog)")
	cmd.Flags().StringP("output", "o", "preview.png", "Output PNG path")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	product, _ := cmd.Flags().GetString("product")
	color, _ := cmd.Flags().GetString("color")
	designPath, _ := cmd.Flags().GetString("design")
	output, _ := cmd.Flags().GetString("output")

	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	sess := session.New(cat)
	if err := sess.SelectProduct(catalog.ProductType(product)); err != nil {
		return fmt.Errorf("%w: %s", err, product)
	}
	if color != "" {
		if err := sess.SelectColor(color); err != nil {
			return fmt.Errorf("%w: %s", err, color)
		}
	}

	if designPath != "" {
		data, err := os.ReadFile(designPath)
		if err != nil {
			return fmt.Errorf("failed to read design: %w", err)
		}
		if err := sess.LoadDesign(filepath.Base(designPath), data); err != nil {
			return fmt.Errorf("%s: %w", designPath, err)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if err := renderer.EncodePNG(f, sess.Render()); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s (%s, %s, %s)\n",
		output, sess.Product().Name, sess.Color().Name, sess.DisplayTotal())
	return nil
}
