package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plugpoint/plugpoint/core/model"
)

var stationSearch string

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List charging stations",
	RunE:  runStations,
}

var stationsShowCmd = &cobra.Command{
	Use:   "show <station-id>",
	Short: "Show one station in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runStationsShow,
}

func init() {
	stationsCmd.Flags().StringVarP(&stationSearch, "search", "s", "", "filter stations by name")
	stationsCmd.AddCommand(stationsShowCmd)
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	res := svc.Stations(ctx)
	if res.Err != nil || len(res.Data) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stations available")
		return nil
	}

	stations := model.FilterStations(res.Data, stationSearch)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPOWER\tDISTANCE\tADDRESS")
	for _, st := range stations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f kW\t%.0f m\t%s\n",
			st.ID, st.Name, st.Status, st.PowerRating, st.Distance, st.Address)
	}
	return w.Flush()
}

func runStationsShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	res := svc.Stations(ctx)
	if res.Err != nil || len(res.Data) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stations available")
		return nil
	}

	st, ok := findStation(res.Data, args[0])
	if !ok {
		return fmt.Errorf("station %q not found", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", st.Name, st.ID)
	fmt.Fprintf(out, "Address:  %s\n", st.Address)
	fmt.Fprintf(out, "Status:   %s\n", st.Status)
	fmt.Fprintf(out, "Power:    %.0f kW max\n", st.PowerRating)
	fmt.Fprintf(out, "Location: %.5f, %.5f\n", st.Geocode.Lat, st.Geocode.Lng)
	fmt.Fprintf(out, "%d Connectors Available\n", st.ConnectorSlots())
	for i, conn := range st.Connectors {
		fmt.Fprintf(out, "  Connector %d: %.0f kW x%d\n", i+1, conn.Power, conn.Quantity)
	}
	if st.Available() {
		fmt.Fprintf(out, "Start charging: plugpoint charge start --station %s --connector 0\n", st.ID)
	}
	return nil
}

func findStation(stations []model.Station, id string) (model.Station, bool) {
	for _, st := range stations {
		if st.ID == id {
			return st, true
		}
	}
	return model.Station{}, false
}
