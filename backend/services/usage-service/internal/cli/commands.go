package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"energydash/backend/services/usage-service/internal/analytics"
	"energydash/backend/services/usage-service/internal/models"
	"energydash/backend/services/usage-service/internal/service"
)

func newRecordCmd(opts *rootOptions) *cobra.Command {
	var in service.RecordInput
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a usage entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsageService(cmd, opts, func(ctx context.Context, svc *service.UsageService) error {
				entry, err := svc.Record(ctx, opts.user, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded %s: %s %g kWh (%s)\n",
					entry.ID, models.FormatDate(entry.Date), entry.Usage, entry.Appliance)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Date, "date", time.Now().UTC().Format(models.DateLayout), "day of the reading")
	cmd.Flags().Float64Var(&in.Usage, "usage", 0, "usage in kWh")
	cmd.Flags().StringVar(&in.Appliance, "appliance", "", "appliance category")
	cmd.Flags().Float64Var(&in.Cost, "cost", 0, "cost paid")
	_ = cmd.MarkFlagRequired("usage")
	return cmd
}

func newForecastCmd(opts *rootOptions) *cobra.Command {
	var chart bool
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Predict usage for the next seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsageService(cmd, opts, func(ctx context.Context, svc *service.UsageService) error {
				forecast, err := svc.Predict(ctx, opts.user)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !forecast.Sufficient() {
					fmt.Fprintln(out, forecast.Message)
					return nil
				}
				printForecast(out, forecast)
				if !chart {
					return nil
				}
				entries, err := svc.Entries(ctx, opts.user)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderChart(entries, forecast))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&chart, "chart", false, "draw recent history and the forecast")
	return cmd
}

func printForecast(w io.Writer, forecast analytics.Forecast) {
	fmt.Fprintf(w, "trend: %+.3f kWh/day over %d entries\n", forecast.Slope, forecast.DataPoints)
	for _, p := range forecast.Predictions {
		fmt.Fprintf(w, "%s  %8.2f kWh\n", models.FormatDate(p.Date), p.PredictedUsage)
	}
}

// renderChart plots the fitted window followed by the predictions as one line.
func renderChart(entries []models.UsageEntry, forecast analytics.Forecast) string {
	recent := analytics.RecentByDate(entries, analytics.ForecastWindow)
	series := make([]float64, 0, len(recent)+len(forecast.Predictions))
	for _, e := range recent {
		series = append(series, e.Usage)
	}
	for _, p := range forecast.Predictions {
		series = append(series, p.PredictedUsage)
	}
	return asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Precision(1),
		asciigraph.Caption(fmt.Sprintf("kWh: last %d entries, then %d day forecast", len(recent), len(forecast.Predictions))),
	)
}

func newBillCmd(opts *rootOptions) *cobra.Command {
	var req analytics.BillRequest
	now := time.Now().UTC()
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Estimate the bill of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("rate") && req.RatePerKWh <= 0 {
				return fmt.Errorf("%w: --rate must be positive", analytics.ErrInvalidInput)
			}
			return withUsageService(cmd, opts, func(ctx context.Context, svc *service.UsageService) error {
				bill, err := svc.Bill(ctx, opts.user, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%04d-%02d: %g kWh over %d entries at $%g/kWh = $%.2f\n",
					bill.Year, bill.Month, bill.TotalUsage, bill.EntriesCount, bill.RatePerKWh, bill.EstimatedCost)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&req.Month, "month", int(now.Month()), "month 1-12")
	cmd.Flags().IntVar(&req.Year, "year", now.Year(), "four-digit year")
	cmd.Flags().Float64Var(&req.RatePerKWh, "rate", 0, "price per kWh (configured default when omitted)")
	return cmd
}

func newTipsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "Show energy saving tips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsageService(cmd, opts, func(ctx context.Context, svc *service.UsageService) error {
				tips, err := svc.Tips(ctx, opts.user)
				if err != nil {
					return err
				}
				for i, tip := range tips {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, tip)
				}
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as CSV, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsageService(cmd, opts, func(ctx context.Context, svc *service.UsageService) error {
				if output == "" || output == "-" {
					return svc.ExportCSV(ctx, opts.user, cmd.OutOrStdout())
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := svc.ExportCSV(ctx, opts.user, f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}
