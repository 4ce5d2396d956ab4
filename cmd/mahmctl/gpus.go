package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGPUsCmd())
}

func newGPUsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpus",
		Short: "List the GPUs known to the source",
		Long: `The gpus command prints the GPU entries of a v2.0 or later segment:
device, family, driver, BIOS and memory size.

Example:
  mahmctl gpus`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGPUs()
		},
	}
	return cmd
}

func runGPUs() error {
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
	return p.PrintGPUs(m.GPUs())
}
