package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newHeaderCmd())
}

func newHeaderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Print the shared memory header",
		Long: `The header command reads the segment once and prints its signature,
version, record sizes and capture time.

Example:
  mahmctl header
  mahmctl header --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeader()
		},
	}
	return cmd
}

func runHeader() error {
	m, err := openMonitor()
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Refresh()
	logRefresh(m, err)
	if err != nil {
		return err
	}

	p, err := newPrinter()
	if err != nil {
		return err
	}
	h, _ := m.Header()
	return p.PrintHeader(&h)
}
