// Package cmd implements the ricecast command line tool. It runs the same
// pipeline as the web application against a local spreadsheet.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"ricecast/internal/config"
	"ricecast/internal/dataset"
	"ricecast/internal/infrastructure"
	"ricecast/internal/validation"
)

type rootOptions struct {
	configFile string
	sheet      string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ricecast",
		Short:         "Rice price forecasting",
		Long:          `Reads a price spreadsheet, drops prices below the floor and forecasts one column with a moving average and exponential smoothing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (defaults and RICECAST_* environment otherwise)")
	root.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Worksheet name, first sheet when empty")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newColumnsCmd(opts))
	root.AddCommand(newForecastCmd(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func (o *rootOptions) config() (*config.Config, error) {
	return config.LoadFile(o.configFile)
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return infrastructure.WithComponent(infrastructure.NewLogger(cmd.ErrOrStderr(), o.logLevel), "cli")
}

// readDataset validates, opens and parses a local xlsx or csv file.
func (o *rootOptions) readDataset(cmd *cobra.Command, path string) (*dataset.RawDataset, error) {
	if _, err := validation.NewFileValidator(o.logger(cmd)).ValidateSpreadsheet(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dataset.Parse(path, f, dataset.ParseOptions{Sheet: o.sheet})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}
