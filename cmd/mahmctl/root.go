package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mahmkit/internal/config"
	"github.com/joshuapare/mahmkit/internal/logging"
	"github.com/joshuapare/mahmkit/monitor"
	"github.com/joshuapare/mahmkit/printer"
)

var (
	// Global flags
	configPath  string
	segmentName string
	segmentDir  string
	encoding    string
	replayPath  string
	outFormat   string
	verbose     bool
	quiet       bool
)

var (
	// Resolved by setup before any command runs.
	cfg    = config.Default()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "mahmctl",
	Short: "Read the MSI Afterburner hardware monitoring shared memory",
	Long: `mahmctl reads the MAHMSharedMemory segment that MSI Afterburner publishes
and prints its header, monitoring entries and GPU entries. It can watch the
segment, capture it to a file for offline replay, and serve it as Prometheus
metrics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&segmentName, "segment", "", "Shared memory segment name (default MAHMSharedMemory)")
	rootCmd.PersistentFlags().StringVar(&segmentDir, "dir", "", "Directory holding the segment on unix (default /dev/shm)")
	rootCmd.PersistentFlags().StringVar(&encoding, "encoding", "", "Text encoding of entry names: utf-8 or windows-1252")
	rootCmd.PersistentFlags().StringVar(&replayPath, "replay", "", "Read a captured segment file instead of the live segment")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "format", "o", "text", "Output format: text, json, yaml or cbor")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config file and environment, applies flag overrides and
// builds the logger.
func setup() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if segmentName != "" {
		c.Segment.Name = segmentName
	}
	if segmentDir != "" {
		c.Segment.Dir = segmentDir
	}
	if encoding != "" {
		c.Segment.Encoding = encoding
	}
	if replayPath != "" {
		c.Segment.Replay = replayPath
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	level := c.Log.Level
	switch {
	case quiet:
		level = "error"
	case verbose:
		level = "debug"
	case level == "":
		level = "warn"
	}
	logging.SetDefaultStructuredLoggerWithLevel("mahmctl", version, level)
	logger = slog.Default()
	return nil
}

// openMonitor returns a monitor over the configured segment.
func openMonitor() (*monitor.Monitor, error) {
	opts, err := cfg.MonitorOptions(logger)
	if err != nil {
		return nil, err
	}
	return monitor.New(opts)
}

// newPrinter returns a printer on stdout in the selected format.
func newPrinter() (*printer.Printer, error) {
	f, err := printer.ParseFormat(outFormat)
	if err != nil {
		return nil, err
	}
	opts := printer.DefaultOptions()
	opts.Format = f
	return printer.New(os.Stdout, opts), nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// logRefresh records a refresh outcome at debug level.
func logRefresh(m *monitor.Monitor, err error) {
	logger.Debug("refresh",
		slog.String("state", m.State().String()),
		slog.Uint64("generation", m.Generation()),
		slog.Any("error", err),
	)
}
