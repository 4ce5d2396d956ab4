package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mahmkit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole snapshot",
		Long: `The dump command reads the segment once and prints the header, all
entries and all GPU entries. A source that reports the dead signature is
printed as inactive rather than treated as an error.

Example:
  mahmctl dump
  mahmctl dump --format cbor > snapshot.cbor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump()
		},
	}
	return cmd
}

func runDump() error {
	m, err := openMonitor()
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Refresh()
	logRefresh(m, err)
	if err != nil && !errors.Is(err, types.ErrHeaderDead) {
		return err
	}

	p, err := newPrinter()
	if err != nil {
		return err
	}
	return p.PrintSnapshot(m.Snapshot())
}
