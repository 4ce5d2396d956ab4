package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mahmkit/internal/install"
)

func init() {
	rootCmd.AddCommand(newPathCmd())
}

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the MSI Afterburner installation directory",
		Long: `The path command reads the installation directory recorded in the
Windows registry by the Afterburner installer.

Example:
  mahmctl path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath()
		},
	}
	return cmd
}

func runPath() error {
	dir, err := install.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, dir)
	return nil
}
