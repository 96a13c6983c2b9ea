package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/session"
	"github.com/twillco/storefront/pkg/catalog"
)

func newUploadCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a design image to the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read design: %w", err)
			}

			// Same checks the server applies, without the round trip
			if err := session.CheckDesign(data); err != nil {
				return err
			}

			res, err := o.client().UploadDesign(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Uploaded %s\n", res.Filename)
			fmt.Fprintf(cmd.OutOrStdout(), "   %s%s\n", o.server(), res.Path)
			return nil
		},
	}
}

func newStatusCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <payment-intent-id>",
		Short: "Look up an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			client := o.client()

			st, err := client.OrderStatus(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order:    %s\n", id)
			fmt.Fprintf(out, "Status:   %s\n", st.Status)
			fmt.Fprintf(out, "Amount:   %s\n", catalog.FormatUSD(st.Amount))
			if name := st.Customer[payment.MetaCustomerName]; name != "" {
				fmt.Fprintf(out, "Customer: %s <%s>\n", name, st.Customer[payment.MetaCustomerEmail])
			}
			if addr := st.Customer[payment.MetaShippingAddress]; addr != "" {
				fmt.Fprintf(out, "Ship to:  %s\n", addr)
			}

			labelPath, _ := cmd.Flags().GetString("label")
			if labelPath == "" {
				return nil
			}

			png, err := client.Label(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch label: %w", err)
			}
			if err := os.WriteFile(labelPath, png, 0644); err != nil {
				return fmt.Errorf("failed to write label: %w", err)
			}
			fmt.Fprintf(out, "🏷️  Label saved to %s\n", labelPath)
			return nil
		},
	}

	cmd.Flags().String("label", "", "Also save the packing label PNG to this path")
	return cmd
}

func newHealthCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := o.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", h.Status, o.server(), h.Timestamp)
			return nil
		},
	}
}
