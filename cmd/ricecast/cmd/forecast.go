package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ricecast/internal/chart"
	"ricecast/internal/exporter"
	"ricecast/internal/forecast"
	"ricecast/internal/infrastructure"
	"ricecast/internal/services"
	"ricecast/internal/validation"
)

type forecastOptions struct {
	*rootOptions
	column  string
	horizon int
	alpha   float64
	chart   string
	csv     string
	xlsx    string
	json    bool
}

func newForecastCmd(root *rootOptions) *cobra.Command {
	opts := &forecastOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "forecast FILE",
		Short: "Forecast one price column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.column, "column", "c", "", "Column name or 1-based number, first column when empty")
	cmd.Flags().IntVar(&opts.horizon, "horizon", 0, "Days to forecast, configured default when 0")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", 0, "Smoothing factor, configured default when 0")
	cmd.Flags().StringVar(&opts.chart, "chart", "", "Write the chart to this .png or .svg file")
	cmd.Flags().StringVar(&opts.csv, "csv", "", "Write the comparison table to this CSV file")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "Write the full report to this workbook")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the report as JSON")
	return cmd
}

func (o *forecastOptions) run(cmd *cobra.Command, path string) error {
	ctx := infrastructure.EnsureTraceID(cmd.Context())
	cmd.SetContext(ctx)
	logger := o.logger(cmd)

	cfg, err := o.config()
	if err != nil {
		return err
	}

	ds, err := o.readDataset(cmd, path)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "dataset loaded",
		slog.String("file", path),
		slog.Int("rows", ds.Len()),
		slog.Any("columns", ds.Columns))

	params := forecast.Params{Column: o.column, Horizon: o.horizon, Alpha: o.alpha}
	if params.Column == "" && len(ds.Columns) > 0 {
		params.Column = ds.Columns[0]
	}
	if params.Horizon == 0 {
		params.Horizon = cfg.Forecast.DefaultHorizon
	}
	if params.Alpha == 0 {
		params.Alpha = cfg.Forecast.DefaultAlpha
	}

	report, err := forecast.Run(ds, params, services.ForecastOptionsFromConfig(cfg.Forecast))
	if err != nil {
		return err
	}
	for _, n := range report.Notices {
		logger.InfoContext(ctx, "forecast notice", slog.String("kind", string(n.Kind)))
	}

	out := cmd.OutOrStdout()
	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := printReport(out, report); err != nil {
		return err
	}

	return o.writeOutputs(cmd, report, logger)
}

// writeOutputs writes the requested files concurrently. The report is
// read-only from here on.
func (o *forecastOptions) writeOutputs(cmd *cobra.Command, report *forecast.Report, logger *slog.Logger) error {
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	validator := validation.NewFileValidator(logger)
	outputs := []struct {
		path string
		exts []string
	}{
		{o.chart, []string{"png", "svg"}},
		{o.csv, []string{"csv"}},
		{o.xlsx, []string{"xlsx"}},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := validator.ValidateOutputFile(out.path, out.exts...); err != nil {
			return err
		}
	}

	var g errgroup.Group

	if o.chart != "" {
		if report.Halted() {
			logger.WarnContext(cmd.Context(), "chart skipped, nothing to plot", slog.String("file", o.chart))
		} else {
			format, err := chart.ParseFormat(extension(o.chart, "png"))
			if err != nil {
				return err
			}
			g.Go(func() error {
				opts := chart.DefaultOptions()
				opts.Format = format
				return writeFile(o.chart, func(w io.Writer) error {
					return chart.Render(w, report, opts)
				})
			})
		}
	}
	if o.csv != "" {
		g.Go(func() error {
			return writeFile(o.csv, func(w io.Writer) error {
				return exporter.Write(w, report, exporter.FormatCSV)
			})
		})
	}
	if o.xlsx != "" {
		g.Go(func() error {
			return writeFile(o.xlsx, func(w io.Writer) error {
				return exporter.Write(w, report, exporter.FormatXLSX)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	for _, out := range outputs {
		if out.path != "" && (out.path != o.chart || !report.Halted()) {
			logger.InfoContext(cmd.Context(), "file written", slog.String("file", out.path))
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func extension(path, fallback string) string {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return fallback
}

func printReport(out io.Writer, report *forecast.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	fmt.Fprintf(w, "Column:\t%s\n", report.Params.Column)
	fmt.Fprintf(w, "Horizon:\t%d days\n", report.Params.Horizon)
	fmt.Fprintf(w, "Alpha:\t%s\n", strconv.FormatFloat(report.Params.Alpha, 'f', -1, 64))
	fmt.Fprintf(w, "Dropped:\t%d rows below %.2f\n", report.Dropped, report.PriceFloor)

	if report.Summary != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "MEAN\tMIN\tMAX\tCOUNT")
		fmt.Fprintf(w, "%.2f\t%.2f\t%.2f\t%d\n",
			report.Summary.Mean, report.Summary.Min, report.Summary.Max, report.Summary.Count)
	}

	if len(report.Comparison) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "STEP\tACTUAL\tSMA\tSES")
		for _, row := range report.Comparison {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.Step, cell(row.Actual), cell(row.MovingAverage), cell(row.Smoothed))
		}
	}

	if len(report.Notices) > 0 {
		fmt.Fprintln(w)
		for _, n := range report.Notices {
			fmt.Fprintf(w, "note:\t%s\n", n.Message)
		}
	}
	return w.Flush()
}

func cell(n forecast.NullFloat) string {
	if !n.Valid {
		return "-"
	}
	return n.Format(2)
}
