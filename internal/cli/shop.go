package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/session"
	"github.com/twillco/storefront/internal/tui"
	"github.com/twillco/storefront/pkg/catalog"
)

func newShopCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Open the terminal shop",
		Args:  cobra.NoArgs,
		RunE:  runShop(o),
	}
	cmd.Flags().String("design", "", "Design image to load on start")
	return cmd
}

func runShop(o *options) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client := o.client()

		// Prices come from the server so the cart matches what it will charge
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		cat, err := client.Catalog(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Using built-in catalog: %v\n", err)
			cat = catalog.Default()
		}

		pk := o.publishableKey()
		if pk == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  No publishable key set (--publishable-key or STRIPE_PUBLISHABLE_KEY); payments cannot be confirmed")
		}

		sess := session.New(cat)
		if path, _ := cmd.Flags().GetString("design"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read design: %w", err)
			}
			if err := sess.LoadDesign(filepath.Base(path), data); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		app := tui.NewApp(sess, client, payment.NewStripeConfirmer(pk), o.server())

		// Anything logged while the alt screen is up goes to the status line
		log.SetOutput(app.LogWriter())
		defer log.SetOutput(os.Stderr)

		return app.Run()
	}
}
