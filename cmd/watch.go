package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plugpoint/plugpoint/app"
	"github.com/plugpoint/plugpoint/infra/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh stations and pricing on an interval, publishing events",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	return svc.Run(ctx)
}

// closeService closes the service, logging rather than failing the command.
func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
