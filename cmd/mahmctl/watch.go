package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mahmkit/monitor"
	"github.com/joshuapare/mahmkit/pkg/types"
	"github.com/joshuapare/mahmkit/printer"
)

var (
	watchInterval time.Duration
	watchCount    int
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh periodically and print entries",
		Long: `The watch command refreshes the segment on an interval and prints the
entries after each refresh. Failed refreshes are reported and the previous
values kept; the command only stops on interrupt or after --count refreshes.

Example:
  mahmctl watch
  mahmctl watch --interval 500ms --count 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx)
		},
	}

	cmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "Time between refreshes")
	cmd.Flags().IntVar(&watchCount, "count", 0, "Stop after this many refreshes (0 = until interrupted)")

	return cmd
}

func runWatch(ctx context.Context) error {
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", watchInterval)
	}

	m, err := openMonitor()
	if err != nil {
		return err
	}
	defer m.Close()

	p, err := newPrinter()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		if err := watchOnce(m, p); err != nil {
			return err
		}
		if (watchCount > 0 && n >= watchCount) || ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// watchOnce refreshes and prints. Only output errors are returned.
func watchOnce(m *monitor.Monitor, p *printer.Printer) error {
	err := m.Refresh()
	logRefresh(m, err)

	if outFormat != string(printer.FormatText) {
		return p.PrintSnapshot(m.Snapshot())
	}

	printInfo("--- %s  generation %d  %s\n", time.Now().Format(time.TimeOnly), m.Generation(), m.State())
	switch {
	case errors.Is(err, types.ErrHeaderDead):
		printInfo("source inactive\n")
		return nil
	case err != nil:
		printInfo("refresh failed: %v\n", err)
		logger.Warn("refresh failed", "error", err)
	}
	return p.PrintEntries(m.Entries())
}
