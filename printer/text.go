package printer

import (
	"fmt"
	"regexp"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joshuapare/mahmkit/pkg/types"
)

// NoGPU is the gpu index of entries not tied to a GPU (framerate, CPU).
const NoGPU = 0xFFFFFFFF

// floatVerb matches the printf formats Afterburner ships, such as "%.0f".
var floatVerb = regexp.MustCompile(`^%[-+ 0]?\d{0,2}(\.\d{1,2})?[fgeFGE]$`)

func (p *Printer) printHeaderText(h *types.Header) error {
	if h == nil {
		_, err := fmt.Fprintln(p.writer, "Source inactive (dead signature)")
		return err
	}
	tw := tabwriter.NewWriter(p.writer, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Signature:\t%s\n", h.Signature)
	fmt.Fprintf(tw, "Version:\t%s\n", h.Version)
	fmt.Fprintf(tw, "Header size:\t%d\n", h.HeaderSize)
	fmt.Fprintf(tw, "Entries:\t%d x %d bytes\n", h.EntryCount, h.EntrySize)
	fmt.Fprintf(tw, "GPU entries:\t%d x %d bytes\n", h.GPUEntryCount, h.GPUEntrySize)
	fmt.Fprintf(tw, "Time:\t%s\n", h.Time.UTC().Format(time.DateTime+" MST"))
	return tw.Flush()
}

func (p *Printer) printEntriesText(entries []types.Entry) error {
	tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	if p.opts.ShowLimits {
		fmt.Fprintln(tw, "#\tNAME\tVALUE\tUNITS\tMIN\tMAX\tGPU\tFLAGS")
	} else {
		fmt.Fprintln(tw, "#\tNAME\tVALUE\tUNITS\tGPU\tFLAGS")
	}
	for i, e := range entries {
		name, units := e.SrcName, e.SrcUnits
		if p.opts.Localized {
			name, units = e.LocalizedSrcName, e.LocalizedSrcUnits
		}
		value := p.formatValue(e.Data, e.RecommendedFormat)
		if p.opts.ShowLimits {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i, name, value, units,
				p.formatValue(e.MinLimit, e.RecommendedFormat),
				p.formatValue(e.MaxLimit, e.RecommendedFormat),
				gpuIndex(e.GPU), e.Flags)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i, name, value, units, gpuIndex(e.GPU), e.Flags)
		}
	}
	return tw.Flush()
}

func (p *Printer) printGPUsText(gpus []types.GPUEntry) error {
	tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDEVICE\tFAMILY\tDRIVER\tBIOS\tMEMORY")
	for i, g := range gpus {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i, g.Device, g.Family, g.Driver, g.BIOS, formatKiB(g.MemAmount))
	}
	return tw.Flush()
}

func (p *Printer) printSnapshotText(s types.Snapshot) error {
	if err := p.printHeaderText(s.Header); err != nil {
		return err
	}
	if s.Header == nil {
		return nil
	}
	fmt.Fprintln(p.writer)
	if err := p.printEntriesText(s.Entries); err != nil {
		return err
	}
	if len(s.GPUs) == 0 {
		return nil
	}
	fmt.Fprintln(p.writer)
	return p.printGPUsText(s.GPUs)
}

func (p *Printer) formatValue(v float32, recommended string) string {
	if p.opts.RecommendedFormat && floatVerb.MatchString(recommended) {
		return fmt.Sprintf(recommended, v)
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func gpuIndex(gpu uint32) string {
	if gpu == NoGPU {
		return "-"
	}
	return strconv.FormatUint(uint64(gpu), 10)
}

func formatKiB(kib uint32) string {
	switch {
	case kib >= 1<<20 && kib%(1<<20) == 0:
		return fmt.Sprintf("%d GiB", kib>>20)
	case kib >= 1<<10:
		return fmt.Sprintf("%d MiB", kib>>10)
	default:
		return fmt.Sprintf("%d KiB", kib)
	}
}
