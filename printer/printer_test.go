package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/mahmkit/internal/testutil"
	"github.com/joshuapare/mahmkit/monitor"
	"github.com/joshuapare/mahmkit/pkg/types"
)

func sampleSnapshot(t *testing.T) types.Snapshot {
	t.Helper()
	snap, err := monitor.ReadOnce(monitor.Options{Backend: testutil.SampleSegment().Publish()})
	require.NoError(t, err)
	return snap
}

func render(t *testing.T, opts Options, fn func(p *Printer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(New(&buf, opts)))
	return buf.Bytes()
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "yaml", "cbor"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		require.Equal(t, Format(s), f)
	}
	f, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestPrinter_Header_Text(t *testing.T) {
	snap := sampleSnapshot(t)
	out := string(render(t, DefaultOptions(), func(p *Printer) error {
		return p.PrintHeader(snap.Header)
	}))
	t.Logf("Text output:\n%s", out)

	require.Contains(t, out, "MAHM")
	require.Contains(t, out, "2.0")
	require.Contains(t, out, "3 x 1324 bytes")
	require.Contains(t, out, "1 x 1304 bytes")
	require.Contains(t, out, "2023-11-14 22:13:20 UTC")
}

func TestPrinter_Header_Inactive(t *testing.T) {
	out := string(render(t, DefaultOptions(), func(p *Printer) error {
		return p.PrintHeader(nil)
	}))
	require.Contains(t, out, "inactive")
}

func TestPrinter_Entries_Text(t *testing.T) {
	snap := sampleSnapshot(t)
	out := string(render(t, DefaultOptions(), func(p *Printer) error {
		return p.PrintEntries(snap.Entries)
	}))
	t.Logf("Text output:\n%s", out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "NAME")
	require.Contains(t, lines[0], "MIN")
	require.Contains(t, lines[1], "GPU temperature")
	require.Contains(t, lines[1], "54")
	require.Contains(t, lines[2], "osd|tray")
	require.Contains(t, lines[3], "143.9")
	require.Contains(t, lines[3], " - ")
}

func TestPrinter_Entries_RawValues(t *testing.T) {
	snap := sampleSnapshot(t)
	opts := DefaultOptions()
	opts.RecommendedFormat = false
	opts.ShowLimits = false
	out := string(render(t, opts, func(p *Printer) error {
		return p.PrintEntries(snap.Entries)
	}))

	require.Contains(t, out, "37.5")
	require.NotContains(t, out, "MIN")
}

func TestPrinter_Entries_RejectsUnsafeFormat(t *testing.T) {
	entries := []types.Entry{{LocalizedSrcName: "x", Data: 1.5, RecommendedFormat: "%s%n%d"}}
	out := string(render(t, DefaultOptions(), func(p *Printer) error {
		return p.PrintEntries(entries)
	}))
	require.Contains(t, out, "1.5")
	require.NotContains(t, out, "%!")
}

func TestPrinter_GPUs_Text(t *testing.T) {
	snap := sampleSnapshot(t)
	out := string(render(t, DefaultOptions(), func(p *Printer) error {
		return p.PrintGPUs(snap.GPUs)
	}))
	require.Contains(t, out, "NVIDIA GeForce RTX 4090")
	require.Contains(t, out, "24 GiB")
}

func TestPrinter_Snapshot_JSON(t *testing.T) {
	snap := sampleSnapshot(t)
	opts := DefaultOptions()
	opts.Format = FormatJSON
	out := render(t, opts, func(p *Printer) error { return p.PrintSnapshot(snap) })

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	header := got["header"].(map[string]any)
	require.Equal(t, "MAHM", header["signature"])
	require.Equal(t, "2.0", header["version"])
	require.Len(t, got["entries"], 3)
	require.Len(t, got["gpus"], 1)
}

func TestPrinter_Entries_JSONEmpty(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = FormatJSON
	opts.Indent = false
	out := render(t, opts, func(p *Printer) error { return p.PrintEntries(nil) })
	require.Equal(t, "[]\n", string(out))
}

func TestPrinter_Snapshot_YAML(t *testing.T) {
	snap := sampleSnapshot(t)
	opts := DefaultOptions()
	opts.Format = FormatYAML
	out := render(t, opts, func(p *Printer) error { return p.PrintSnapshot(snap) })

	var got struct {
		Header struct {
			Signature string `yaml:"signature"`
			Version   string `yaml:"version"`
		} `yaml:"header"`
		Entries []map[string]any `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(out, &got))
	require.Equal(t, "MAHM", got.Header.Signature)
	require.Equal(t, "2.0", got.Header.Version)
	require.Len(t, got.Entries, 3)
	require.Equal(t, "Framerate", got.Entries[2]["src_name"])
}

func TestPrinter_Snapshot_CBOR(t *testing.T) {
	snap := sampleSnapshot(t)
	opts := DefaultOptions()
	opts.Format = FormatCBOR
	first := render(t, opts, func(p *Printer) error { return p.PrintSnapshot(snap) })
	second := render(t, opts, func(p *Printer) error { return p.PrintSnapshot(snap) })
	require.Equal(t, first, second, "encoding must be deterministic")

	var got struct {
		Header struct {
			Signature string `cbor:"signature"`
			Version   string `cbor:"version"`
		} `cbor:"header"`
		Entries    []map[string]any `cbor:"entries"`
		Generation uint64           `cbor:"generation"`
	}
	require.NoError(t, cbor.Unmarshal(first, &got))
	require.Equal(t, "MAHM", got.Header.Signature)
	require.Equal(t, "2.0", got.Header.Version)
	require.Len(t, got.Entries, 3)
	require.EqualValues(t, 1, got.Generation)
}

func TestFormatKiB(t *testing.T) {
	require.Equal(t, "24 GiB", formatKiB(24<<20))
	require.Equal(t, "8 MiB", formatKiB(8<<10))
	require.Equal(t, "512 KiB", formatKiB(512))
}
