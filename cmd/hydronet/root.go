package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hydpy-dev/hydronet/internal/logging"
)

var (
	flagLogLevel string
	flagProject  string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hydronet",
	Short: "Simulation engine for networks of hydrological process models",
	Long: `hydronet loads a YAML project describing model instances, link
connections, and feedback couplings, and integrates the network with an
adaptive error-controlled solver.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "project.yaml", "path to the project file")
}
