// Package printer renders monitor snapshots for the command line.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/mahmkit/pkg/types"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs aligned human-readable tables.
	FormatText Format = "text"

	// FormatJSON outputs JSON.
	FormatJSON Format = "json"

	// FormatYAML outputs YAML.
	FormatYAML Format = "yaml"

	// FormatCBOR outputs deterministic CBOR.
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, yaml or cbor)", s)
	}
}

// Options controls printing behavior.
type Options struct {
	// Format specifies the output format.
	// Default: FormatText
	Format Format

	// Localized prints localized names and units (text format only).
	// Default: true
	Localized bool

	// ShowLimits adds min/max columns (text format only).
	// Default: true
	ShowLimits bool

	// RecommendedFormat renders values with the source's printf format
	// when it is a plain float verb (text format only).
	// Default: true
	RecommendedFormat bool

	// Indent pretty-prints JSON.
	// Default: true
	Indent bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:            FormatText,
		Localized:         true,
		ShowLimits:        true,
		RecommendedFormat: true,
		Indent:            true,
	}
}

// Printer writes snapshots and their parts to w.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintSnapshot(m.Snapshot())
func New(w io.Writer, opts Options) *Printer {
	return &Printer{writer: w, opts: opts}
}

// PrintHeader prints a header. A nil header prints the inactive state.
func (p *Printer) PrintHeader(h *types.Header) error {
	if p.opts.Format == FormatText || p.opts.Format == "" {
		return p.printHeaderText(h)
	}
	return p.encode(h)
}

// PrintEntries prints a list of entries.
func (p *Printer) PrintEntries(entries []types.Entry) error {
	if p.opts.Format == FormatText || p.opts.Format == "" {
		return p.printEntriesText(entries)
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return p.encode(entries)
}

// PrintGPUs prints a list of GPU entries.
func (p *Printer) PrintGPUs(gpus []types.GPUEntry) error {
	if p.opts.Format == FormatText || p.opts.Format == "" {
		return p.printGPUsText(gpus)
	}
	if gpus == nil {
		gpus = []types.GPUEntry{}
	}
	return p.encode(gpus)
}

// PrintSnapshot prints a whole snapshot.
func (p *Printer) PrintSnapshot(s types.Snapshot) error {
	if p.opts.Format == FormatText || p.opts.Format == "" {
		return p.printSnapshotText(s)
	}
	if s.Entries == nil {
		s.Entries = []types.Entry{}
	}
	return p.encode(s)
}
