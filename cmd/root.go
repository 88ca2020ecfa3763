package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ggpicture/internal/config"
	"github.com/AnyUserName/ggpicture/internal/telemetry"
)

var (
	version     = "0.1.0"
	verbose     bool
	statePath   string
	outputPath  string
	traceMode   string
	metricsFile string
)

// Per-invocation state set up in PersistentPreRunE and torn down in finish.
var (
	metrics       *telemetry.Metrics
	shutdownTrace telemetry.Shutdown = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "ggpicture",
	Short: "Command-line image editor: rotate, adjust, filter, blur and pixelate",
	Long: `ggpicture applies pixel transforms to raster images.

Set a working directory once with set-dir; input files are resolved against
it and results are written to the configured output (default gogi.bmp in
the working directory). The batch command applies one transform to a whole
directory and writes a manifest.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and flushes telemetry, also on failure.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if ferr := finish(); err == nil {
		err = ferr
	}
	return err
}

func init() {
	tc := config.LoadTelemetry()
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&statePath, "config", config.StatePath(), "workspace state file")
	pf.StringVarP(&outputPath, "output", "o", "", "write the result here instead of the configured output")
	pf.StringVar(&traceMode, "trace", tc.Exporter, "trace exporter: none, stdout or otlp")
	pf.StringVar(&metricsFile, "metrics-file", tc.MetricsFile, "write Prometheus metrics to this textfile on exit")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ggpicture %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func setup(cmd *cobra.Command, _ []string) error {
	tc := config.LoadTelemetry()
	tc.Exporter = traceMode
	shutdown, err := telemetry.SetupTracing(cmd.Context(), tc, version, logger())
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	shutdownTrace = shutdown
	if metricsFile != "" {
		metrics = telemetry.NewMetrics()
	}
	return nil
}

func finish() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTrace(ctx); err != nil {
		logVerbose("trace shutdown: %v", err)
	}
	if metrics != nil && metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logVerbose("metrics written to %s", metricsFile)
	}
	return nil
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[ggpicture] "+format+"\n", args...)
	}
}

// logger returns a *log.Logger that follows --verbose, for packages that
// take one.
func logger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "[ggpicture] ", 0)
}

func loadWorkspace() (*config.Workspace, error) {
	ws, err := config.Load(statePath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return ws, nil
}
