package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/plugpoint/plugpoint/app"
	"github.com/plugpoint/plugpoint/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "plugpoint",
	Short:         "EV charging station client",
	Long:          "Discover charging stations, start and stop charging sessions, and review session history.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// newService loads the configuration and builds the shared service. Without
// a --config flag the defaults apply, overridable through PP_ environment
// variables via an empty file-less load.
func newService() (*app.Service, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
	} else if _, statErr := os.Stat("config.yaml"); statErr == nil {
		cfg, err = config.Load("config.yaml")
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	return app.New(cfg)
}
