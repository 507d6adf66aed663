package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cartwheel/internal/api"
	"github.com/roach88/cartwheel/internal/config"
	"github.com/roach88/cartwheel/internal/coupon"
	"github.com/roach88/cartwheel/internal/engine"
	"github.com/roach88/cartwheel/internal/persist"
	"github.com/roach88/cartwheel/internal/pricing"
	"github.com/roach88/cartwheel/internal/session"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cart engine and HTTP API",
		Long: `Run the cart engine: rehydrate the persisted cart, start the
single-writer dispatch loop and the discount reconciler, and serve the
HTTP API until interrupted.

Example:
  cartwheel serve
  cartwheel serve --config cartwheel.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(rootOpts, cmd)
		},
	}

	return cmd
}

func serve(opts *RootOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	defer func() {
		if closeErr := storage.Close(); closeErr != nil {
			slog.Error("error closing storage", "error", closeErr)
		}
	}()

	// Rehydrate fail-soft: a missing or corrupt snapshot starts empty.
	adapter := persist.NewAdapter(storage, cfg.CartKey)
	initial, revision := adapter.Rehydrate(cmd.Context())

	dispatcher := engine.New(initial,
		engine.WithPersister(adapter),
		engine.WithClock(engine.NewClockAt(revision)),
	)

	var reconciler *pricing.Reconciler
	if cfg.PricingURL != "" {
		reconciler = pricing.NewReconciler(dispatcher, pricing.NewClient(cfg.PricingURL))
		slog.Info("discount reconciler enabled", "pricing_url", cfg.PricingURL)
	}

	book := coupon.DefaultBook()
	if len(cfg.Coupons) > 0 {
		book, err = coupon.NewBook(cfg.Coupons...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to compile coupon rules", err)
		}
	}

	server := api.NewServer(dispatcher, coupon.NewApplier(dispatcher, book))
	if cfg.CartServiceURL != "" {
		server.SetMerger(session.NewMerger(dispatcher, session.NewClient(cfg.CartServiceURL)))
		slog.Info("session merge enabled", "cart_service_url", cfg.CartServiceURL)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Cart engine started. Press Ctrl-C to stop.")

	runErr := dispatcher.Run(ctx)

	// Drain background work, then shut the HTTP surface down.
	if reconciler != nil {
		reconciler.Wait()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	select {
	case err := <-errCh:
		return WrapExitError(ExitFailure, "http server error", err)
	default:
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}

	slog.Info("engine stopped gracefully")
	return nil
}
