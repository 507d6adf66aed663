package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cartwheel/internal/config"
	"github.com/roach88/cartwheel/internal/persist"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the persisted cart snapshot",
		Long: `Delete the cart snapshot persisted under the configured storage key,
e.g. after logout. The next engine start rehydrates an empty cart.

Example:
  cartwheel reset --config cartwheel.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetCart(rootOpts, cmd)
		},
	}

	return cmd
}

func resetCart(opts *RootOptions, cmd *cobra.Command) error {
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
	if err := adapter.Clear(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "failed to clear cart", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cart %q cleared.\n", cfg.CartKey)
	return nil
}
