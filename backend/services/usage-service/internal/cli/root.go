// Package cli implements energyctl, an operator tool that runs the usage analytics directly
// against the configured store.
package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"energydash/backend/libs/logging"
	"energydash/backend/services/usage-service/internal/app"
	"energydash/backend/services/usage-service/internal/config"
	"energydash/backend/services/usage-service/internal/service"
)

type rootOptions struct {
	user    string
	verbose bool
}

// NewRootCmd builds the energyctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "energyctl",
		Short:         "Inspect household energy usage from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "user id whose entries to read")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRecordCmd(opts),
		newForecastCmd(opts),
		newBillCmd(opts),
		newTipsCmd(opts),
		newExportCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// withUsageService opens the configured store for the duration of fn.
func withUsageService(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, svc *service.UsageService) error) error {
	if strings.TrimSpace(opts.user) == "" {
		return errors.New("--user is required")
	}

	logger, err := logging.NewConsoleLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	svc := service.NewUsageService(stores.Usage, service.Options{
		StoreTimeout: cfg.Store.Timeout,
		DefaultRate:  cfg.Billing.DefaultRatePerKWh,
	}, logger)
	return fn(ctx, svc)
}
