package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cartwheel/internal/cart"
	"github.com/roach88/cartwheel/internal/config"
	"github.com/roach88/cartwheel/internal/persist"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted cart snapshot",
		Long: `Print the cart snapshot currently persisted under the configured
storage key. The total shown is recomputed from the items, exactly as
rehydration would.

Example:
  cartwheel show
  cartwheel show --config cartwheel.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(rootOpts, cmd)
		},
	}

	return cmd
}

func showCart(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	defer storage.Close()

	adapter := persist.NewAdapter(storage, cfg.CartKey)
	state, revision := adapter.Rehydrate(cmd.Context())

	if opts.Format == "json" {
		out := struct {
			Revision int64      `json:"revision"`
			Cart     cart.State `json:"cart"`
		}{Revision: revision, Cart: state}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cart %q (revision %d)\n", cfg.CartKey, revision)
	if len(state.Items) == 0 {
		fmt.Fprintln(w, "  (empty)")
	}
	for _, li := range state.Items {
		fmt.Fprintf(w, "  %-30s x%-3d %10.2f  (-%g%%)\n",
			li.Title, li.Quantity, li.UnitPrice, li.DiscountPercent)
	}
	fmt.Fprintf(w, "  Subtotal: %.2f  Delivery: %.2f  Total: %.2f\n",
		cart.Round2(state.Total),
		cart.Round2(state.DeliveryCharge),
		cart.Round2(state.Total+state.DeliveryCharge))
	return nil
}
