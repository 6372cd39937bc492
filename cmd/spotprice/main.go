package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/pricing"
	"github.com/icodeforyou/spotprice-go/setup"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "spotprice",
		Short: "Electricity spot prices with grid fee and high cost hours",
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.yaml)")

	rootCmd.AddCommand(dayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dayCmd() *cobra.Command {
	var date string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Fetch, price and classify one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cnfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      cnfg.Logging.GetConsoleLevel(),
				TimeFormat: time.RFC3339,
			})))

			loc, err := hours.LoadLocation(cnfg.GetTimezone())
			if err != nil {
				return err
			}

			day := time.Now()
			if date != "today" {
				if day, err = hours.ParseDay(date, loc); err != nil {
					return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
				}
			}

			engine, err := setup.Engine(cnfg, loc)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*cnfg.PriceSource.GetTimeout())
			defer cancel()

			result, err := engine.GetDayResult(ctx, day)
			if errors.Is(err, pricing.ErrNoData) {
				fmt.Fprintf(cmd.OutOrStdout(), "no prices published for %s\n", hours.DayKey(day, loc))
				return nil
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Hours())
			}
			return printDay(cmd.OutOrStdout(), result, loc)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Date to price (YYYY-MM-DD or 'today')")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the hours as JSON")

	return cmd
}

func printDay(out io.Writer, day types.DayResult, loc *time.Location) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "hour\tspot\tcost\tdiscount\thigh\t\n")
	for _, h := range day.Hours() {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%s\t%s\t\n",
			h.Start.In(loc).Format("15:04"),
			h.BaseCost,
			h.Cost,
			mark(h.IsDiscountWindow),
			mark(h.IsHighCost.ValueOrDefault(false)))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%s: %d hours, %d high cost\n", day.Key(), day.Len(), day.HighCostCount())
	return err
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}
