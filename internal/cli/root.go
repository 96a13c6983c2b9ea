// Package cli is the storefront command line: the terminal shop plus
// helpers for rendering, uploading and order lookups.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twillco/storefront/internal/checkout"
	"github.com/twillco/storefront/pkg/catalog"
)

const defaultServerURL = "http://localhost:3000"

// options holds the persistent flags, bound through viper so they can also
// come from the environment
type options struct {
	v *viper.Viper
}

func (o *options) server() string {
	return strings.TrimRight(o.v.GetString("server"), "/")
}

func (o *options) publishableKey() string {
	return o.v.GetString("publishable_key")
}

func (o *options) client() *checkout.APIClient {
	return checkout.NewAPIClient(o.server())
}

// loadCatalog reads a catalog file, or returns the built-in catalog when
// path is empty
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.ParseFile(path)
}

// NewRootCmd builds the storefront command tree
func NewRootCmd(version string) *cobra.Command {
	o := &options{v: viper.New()}

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Twill T-Shirt Co storefront client",
		Long: `storefront is the terminal client for the Twill T-Shirt Co shop.

Run without a subcommand to open the shop: pick a garment and color, load a
design, fill your cart and check out.`,
		RunE:          runShop(o),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	flags := root.PersistentFlags()
	flags.StringP("server", "s", defaultServerURL, "Storefront server URL")
	flags.String("publishable-key", "", "Stripe publishable key used to confirm payments")

	o.v.BindPFlag("server", flags.Lookup("server"))
	o.v.BindPFlag("publishable_key", flags.Lookup("publishable-key"))
	o.v.BindEnv("server", "STOREFRONT_SERVER")
	o.v.BindEnv("publishable_key", "STRIPE_PUBLISHABLE_KEY")

	root.Flags().String("design", "", "Design image to load on start")

	root.AddCommand(newShopCmd(o))
	root.AddCommand(newRenderCmd())
	root.AddCommand(newUploadCmd(o))
	root.AddCommand(newStatusCmd(o))
	root.AddCommand(newHealthCmd(o))
	root.AddCommand(newWatchCmd(o))

	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
