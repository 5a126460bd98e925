package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var priceSamples int

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show the current spot electricity price",
	RunE:  runPrice,
}

func init() {
	priceCmd.Flags().IntVarP(&priceSamples, "samples", "n", 1, "number of fresh samples to draw")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	out := cmd.OutOrStdout()
	if priceSamples <= 1 {
		res := svc.SpotPrice(ctx)
		if res.Err != nil {
			fmt.Fprintln(out, "No price available")
			return nil
		}
		fmt.Fprintf(out, "%.2f %s/kWh (updated %s)\n",
			res.Data.Rate, res.Data.Currency, res.Data.LastUpdated.Format(time.RFC3339))
		return nil
	}

	// Sampling mode draws straight from the generator: each call is an
	// independent draw, so the cache would defeat the point.
	rates := make([]float64, 0, priceSamples)
	for i := 0; i < priceSamples; i++ {
		price, err := svc.Prices.SpotPrice(ctx)
		if err != nil {
			return err
		}
		rates = append(rates, price.Rate)
		fmt.Fprintf(out, "sample %d: %.2f %s/kWh\n", i+1, price.Rate, price.Currency)
	}
	mean := stat.Mean(rates, nil)
	stddev := stat.StdDev(rates, nil)
	fmt.Fprintf(out, "mean %.4f stddev %.4f over %d samples\n", mean, stddev, len(rates))
	return nil
}
