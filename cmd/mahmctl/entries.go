package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/mahmkit/pkg/types"
)

var (
	entriesGPU   int
	entriesName  string
	entriesFlags []string
)

func init() {
	rootCmd.AddCommand(newEntriesCmd())
}

func newEntriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List monitoring entries",
		Long: `The entries command reads the segment once and lists every monitoring
entry with its current value, limits, GPU index and visibility flags.

Example:
  mahmctl entries
  mahmctl entries --gpu 0 --flag osd
  mahmctl entries --name temp --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntries()
		},
	}

	cmd.Flags().IntVar(&entriesGPU, "gpu", -1, "Only entries of this GPU index")
	cmd.Flags().StringVar(&entriesName, "name", "", "Only entries whose name contains this text (case-insensitive)")
	cmd.Flags().StringSliceVar(&entriesFlags, "flag", nil, "Only entries with these flags set: osd, lcd, tray")

	return cmd
}

func runEntries() error {
	filter, err := entryFilter(entriesGPU, entriesName, entriesFlags)
	if err != nil {
		return err
	}

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

	var out []types.Entry
	for _, e := range m.Entries() {
		if filter(e) {
			out = append(out, e)
		}
	}
	printVerbose("%d of %d entries match\n", len(out), len(m.Entries()))
	return p.PrintEntries(out)
}

// entryFilter builds a predicate from the entries flags. gpu < 0 matches
// every GPU.
func entryFilter(gpu int, name string, flagNames []string) (func(types.Entry) bool, error) {
	var want types.EntryFlags
	for _, s := range flagNames {
		f, err := types.ParseEntryFlag(s)
		if err != nil {
			return nil, err
		}
		want |= f
	}
	name = strings.ToLower(name)

	return func(e types.Entry) bool {
		if gpu >= 0 && e.GPU != uint32(gpu) {
			return false
		}
		if !e.Flags.Has(want) {
			return false
		}
		if name != "" &&
			!strings.Contains(strings.ToLower(e.SrcName), name) &&
			!strings.Contains(strings.ToLower(e.LocalizedSrcName), name) {
			return false
		}
		return true
	}, nil
}
