package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugpoint/plugpoint/core/model"
	"github.com/plugpoint/plugpoint/core/session"
)

var (
	chargeStation    string
	chargeConnectors []int
	chargeDuration   time.Duration
)

var chargeCmd = &cobra.Command{
	Use:   "charge",
	Short: "Start and stop charging sessions",
}

var chargeStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a charging session and hold it until interrupted",
	RunE:  runChargeStart,
}

var chargeStopCmd = &cobra.Command{
	Use:   "stop <session-id>",
	Short: "Stop a running charging session",
	Args:  cobra.ExactArgs(1),
	RunE:  runChargeStop,
}

func init() {
	chargeStartCmd.Flags().StringVar(&chargeStation, "station", "", "station id to charge at")
	chargeStartCmd.Flags().IntSliceVar(&chargeConnectors, "connector", nil, "selected connector slot (zero-based)")
	chargeStartCmd.Flags().DurationVar(&chargeDuration, "duration", 0, "stop automatically after this long (0 waits for Ctrl-C)")
	if err := chargeStartCmd.MarkFlagRequired("station"); err != nil {
		panic(err)
	}
	chargeCmd.AddCommand(chargeStartCmd, chargeStopCmd)
	rootCmd.AddCommand(chargeCmd)
}

func runChargeStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	out := cmd.OutOrStdout()

	res := svc.Stations(ctx)
	if res.Err != nil || len(res.Data) == 0 {
		fmt.Fprintln(out, "No stations available")
		return nil
	}
	st, ok := findStation(res.Data, chargeStation)
	if !ok {
		return fmt.Errorf("station %q not found", chargeStation)
	}
	if !st.Available() {
		return fmt.Errorf("station %q is %s", st.Name, st.Status)
	}

	ctrl := svc.NewController()
	handoff, err := ctrl.Start(ctx, session.StartRequest{
		StationID:   st.ID,
		Connectors:  chargeConnectors,
		PowerRating: st.PowerRating,
	})
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintln(out, ve.Reason)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "CHARGING SESSION  [ACTIVE]")
	fmt.Fprintf(out, "Session:     %s\n", handoff.SessionID)
	fmt.Fprintf(out, "Charge Rate: %.2f /kWh\n", handoff.ChargeRate)
	fmt.Fprintf(out, "Power:       %.0f kW\n", handoff.PowerRating)
	fmt.Fprintf(out, "Connector:   %d\n", handoff.Connector+1)

	if chargeDuration > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(chargeDuration):
		}
	} else {
		fmt.Fprintln(out, "Press Ctrl-C to stop charging")
		<-ctx.Done()
	}

	// The signal context is gone by now; the stop call gets its own.
	stopCtx, cancel := context.WithTimeout(context.Background(), svc.Cfg.API.Timeout())
	defer cancel()
	sess, err := ctrl.Stop(stopCtx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "CHARGING SESSION  [COMPLETED]")
	fmt.Fprintln(out, sess.DurationText())
	fmt.Fprintln(out, "View history: plugpoint history")
	return nil
}

func runChargeStop(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	out := cmd.OutOrStdout()

	current, err := svc.API.FetchChargingSession(ctx, args[0])
	if err != nil {
		return err
	}

	ctrl := svc.NewController()
	if err := ctrl.Resume(current); err != nil {
		return err
	}
	if ctrl.State() == session.StateCompleted {
		fmt.Fprintln(out, "Session already completed")
		fmt.Fprintln(out, "View history: plugpoint history")
		return nil
	}

	sess, err := ctrl.Stop(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s completed\n", sess.ID)
	fmt.Fprintln(out, sess.DurationText())
	return nil
}
