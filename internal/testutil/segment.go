// Package testutil builds synthetic MAHM segment images for tests and
// publishes them where a reader can find them.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/mahmkit/internal/format"
	"github.com/joshuapare/mahmkit/internal/shm"
)

// Version20 is the v2.0 version word, the first layout with GPU entries.
const Version20 = 2 << 16

// EntrySpec describes one entry to encode. Localized fields default to the
// source fields when empty.
type EntrySpec struct {
	Name, Units                   string
	LocalizedName, LocalizedUnits string
	Format                        string
	Data, Min, Max                float32
	Flags, GPU, SrcID             uint32
}

// GPUSpec describes one GPU entry to encode.
type GPUSpec struct {
	ID, Family, Device, Driver, BIOS string
	MemAmount                        uint32
}

// SegmentBuilder assembles a segment image. The zero value is not usable;
// start from NewSegment.
//
// Example:
//
//	img := testutil.NewSegment().
//		AddEntry(testutil.EntrySpec{Name: "GPU temperature", Units: "C", Data: 54}).
//		Bytes()
type SegmentBuilder struct {
	Signature    uint32
	Version      uint32
	HeaderSize   uint32
	EntrySize    uint32
	GPUEntrySize uint32
	Time         int32

	// EntryCount and GPUEntryCount override the counts written to the
	// header when non-nil. They do not change what is encoded.
	EntryCount    *uint32
	GPUEntryCount *uint32

	entries []EntrySpec
	gpus    []GPUSpec
}

// NewSegment returns a builder for an empty v2.0 segment.
func NewSegment() *SegmentBuilder {
	return &SegmentBuilder{
		Signature:    format.Signature,
		Version:      Version20,
		HeaderSize:   format.HeaderSize,
		EntrySize:    format.EntrySize,
		GPUEntrySize: format.GPUEntrySize,
		Time:         1_700_000_000,
	}
}

// AddEntry appends an entry.
func (b *SegmentBuilder) AddEntry(e EntrySpec) *SegmentBuilder {
	b.entries = append(b.entries, e)
	return b
}

// AddGPU appends a GPU entry.
func (b *SegmentBuilder) AddGPU(g GPUSpec) *SegmentBuilder {
	b.gpus = append(b.gpus, g)
	return b
}

// Dead switches the signature to the dead sentinel.
func (b *SegmentBuilder) Dead() *SegmentBuilder {
	b.Signature = format.DeadSignature
	return b
}

// DeclareEntries makes the header claim n entries regardless of how many
// were added.
func (b *SegmentBuilder) DeclareEntries(n uint32) *SegmentBuilder {
	b.EntryCount = &n
	return b
}

// Bytes encodes the image.
func (b *SegmentBuilder) Bytes() []byte {
	entryCount := uint32(len(b.entries))
	if b.EntryCount != nil {
		entryCount = *b.EntryCount
	}
	gpuCount := uint32(len(b.gpus))
	if b.GPUEntryCount != nil {
		gpuCount = *b.GPUEntryCount
	}

	entriesLen := len(b.entries) * int(b.EntrySize)
	size := int(b.HeaderSize) + entriesLen + len(b.gpus)*int(b.GPUEntrySize)
	if size < format.HeaderMinSize {
		size = format.HeaderMinSize
	}
	img := make([]byte, size)

	h := format.Header{
		Signature:     b.Signature,
		Version:       b.Version,
		HeaderSize:    b.HeaderSize,
		EntryCount:    entryCount,
		EntrySize:     b.EntrySize,
		Time:          b.Time,
		GPUEntryCount: gpuCount,
		GPUEntrySize:  b.GPUEntrySize,
	}
	if b.HeaderSize >= format.HeaderSize {
		format.PutHeader(img, h)
	} else {
		format.PutHeader(img[:format.HeaderMinSize], h)
	}

	for i, e := range b.entries {
		// Encode into a full-size scratch record and keep only the stride,
		// which is how a v1.x producer lays out its shorter records.
		rec := make([]byte, format.EntrySize)
		encodeEntry(rec, e)
		copy(img[int(b.HeaderSize)+i*int(b.EntrySize):], rec[:min(int(b.EntrySize), len(rec))])
	}
	base := int(b.HeaderSize) + entriesLen
	for i, g := range b.gpus {
		rec := make([]byte, format.GPUEntrySize)
		encodeGPU(rec, g)
		copy(img[base+i*int(b.GPUEntrySize):], rec[:min(int(b.GPUEntrySize), len(rec))])
	}
	return img
}

func encodeEntry(rec []byte, e EntrySpec) {
	locName, locUnits := e.LocalizedName, e.LocalizedUnits
	if locName == "" {
		locName = e.Name
	}
	if locUnits == "" {
		locUnits = e.Units
	}
	format.PutText(rec, format.EntrySrcNameOffset, e.Name)
	format.PutText(rec, format.EntrySrcUnitsOffset, e.Units)
	format.PutText(rec, format.EntryLocalizedSrcNameOffset, locName)
	format.PutText(rec, format.EntryLocalizedSrcUnitsOffset, locUnits)
	format.PutText(rec, format.EntryRecommendedFormatOffset, e.Format)
	format.PutF32(rec, format.EntryDataOffset, e.Data)
	format.PutF32(rec, format.EntryMinLimitOffset, e.Min)
	format.PutF32(rec, format.EntryMaxLimitOffset, e.Max)
	format.PutU32(rec, format.EntryFlagsOffset, e.Flags)
	format.PutU32(rec, format.EntryGPUOffset, e.GPU)
	format.PutU32(rec, format.EntrySrcIDOffset, e.SrcID)
}

func encodeGPU(rec []byte, g GPUSpec) {
	format.PutText(rec, format.GPUEntryIDOffset, g.ID)
	format.PutText(rec, format.GPUEntryFamilyOffset, g.Family)
	format.PutText(rec, format.GPUEntryDeviceOffset, g.Device)
	format.PutText(rec, format.GPUEntryDriverOffset, g.Driver)
	format.PutText(rec, format.GPUEntryBIOSOffset, g.BIOS)
	format.PutU32(rec, format.GPUEntryMemAmountOffset, g.MemAmount)
}

// Publish stores the image under format.SegmentName in a fresh memory
// backend and returns it.
func (b *SegmentBuilder) Publish() *shm.MemoryBackend {
	mem := shm.NewMemoryBackend()
	mem.Store(format.SegmentName, b.Bytes())
	return mem
}

// WriteSegment writes img as format.SegmentName under a temporary directory
// and returns the directory.
func WriteSegment(t *testing.T, img []byte) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, format.SegmentName), img, 0o644); err != nil {
		t.Fatalf("write segment: %v", err)
	}
	return dir
}

// SampleSegment returns a builder preloaded with a plausible single-GPU
// capture.
func SampleSegment() *SegmentBuilder {
	return NewSegment().
		AddEntry(EntrySpec{
			Name: "GPU temperature", Units: "C", Format: "%.0f",
			Data: 54, Min: 0, Max: 100, Flags: format.EntryFlagShowInOSD, SrcID: 0x00,
		}).
		AddEntry(EntrySpec{
			Name: "GPU usage", Units: "%", Format: "%.0f",
			Data: 37.5, Min: 0, Max: 100, Flags: format.EntryFlagShowInOSD | format.EntryFlagShowInTray, SrcID: 0x30,
		}).
		AddEntry(EntrySpec{
			Name: "Framerate", Units: "FPS", Format: "%.1f",
			Data: 143.9, Min: 0, Max: 200, GPU: 0xFFFFFFFF, SrcID: 0x50,
		}).
		AddGPU(GPUSpec{
			ID:        "VEN_10DE&DEV_2684&SUBSYS_16F310DE&REV_A1&BUS_1&DEV_0&FN_0",
			Family:    "AD102-A",
			Device:    "NVIDIA GeForce RTX 4090",
			Driver:    "546.33",
			BIOS:      "95.02.18.80.5F",
			MemAmount: 24 << 20,
		})
}
