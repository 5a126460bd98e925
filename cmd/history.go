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

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past charging sessions",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	out := cmd.OutOrStdout()

	res := svc.Sessions(ctx)
	if res.Err != nil || len(res.Data) == 0 {
		fmt.Fprintln(out, "No History Available")
		return nil
	}

	fmt.Fprintln(out, "History")
	var durations, rates []float64
	for _, sess := range res.Data {
		date := "NaN"
		if sess.StartTime != nil {
			date = formatOrdinalDate(*sess.StartTime)
		}
		fmt.Fprintf(out, "%s  %s\n", sess.StationID, date)
		fmt.Fprintf(out, "  %s  %.2f kW/h\n", sess.DurationText(), sess.ChargeRate)
		if secs, ok := sess.DurationSeconds(); ok {
			durations = append(durations, float64(secs))
		}
		rates = append(rates, sess.ChargeRate)
	}
	if len(durations) > 0 {
		fmt.Fprintf(out, "%d sessions, mean duration %.0f seconds, mean rate %.2f\n",
			len(res.Data), stat.Mean(durations, nil), stat.Mean(rates, nil))
	}
	return nil
}

// formatOrdinalDate renders "2nd Jan, 2006" style dates.
func formatOrdinalDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	switch {
	case day%10 == 1 && day != 11:
		suffix = "st"
	case day%10 == 2 && day != 12:
		suffix = "nd"
	case day%10 == 3 && day != 13:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s %s", day, suffix, t.Format("Jan, 2006"))
}
