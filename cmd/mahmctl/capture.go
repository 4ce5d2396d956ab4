package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mahmkit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newCaptureCmd())
}

func newCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture <out>",
		Short: "Copy the raw segment to a file",
		Long: `The capture command copies the mapped segment byte for byte into a file,
which can be read back with --replay. A segment that fails to decode is still
captured, so broken layouts can be inspected offline.

Example:
  mahmctl capture afterburner.bin
  mahmctl --replay afterburner.bin entries`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(args)
		},
	}
	return cmd
}

func runCapture(args []string) error {
	out := args[0]

	m, err := openMonitor()
	if err != nil {
		return err
	}
	defer m.Close()

	refreshErr := m.Refresh()
	logRefresh(m, refreshErr)
	switch types.KindOf(refreshErr) {
	case types.ErrKindSegmentNotFound, types.ErrKindAccessDenied,
		types.ErrKindSegmentMapFailed, types.ErrKindUnsupported:
		return refreshErr
	}

	raw, err := m.Raw()
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}

	printInfo("Captured %d bytes to %s\n", len(raw), out)
	if refreshErr != nil {
		printInfo("Warning: segment did not decode: %v\n", refreshErr)
	}
	return nil
}
