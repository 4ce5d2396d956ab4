package format

import (
	"errors"
	"strings"
	"testing"
)

func buildEntryView(t *testing.T, stride int, count int) ([]byte, Header) {
	t.Helper()
	h := Header{
		Signature:  Signature,
		Version:    0x00020000,
		HeaderSize: HeaderSize,
		EntryCount: uint32(count),
		EntrySize:  uint32(stride),
	}
	b := make([]byte, HeaderSize+stride*count)
	PutHeader(b, h)
	return b, h
}

func TestParseEntry(t *testing.T) {
	b, h := buildEntryView(t, EntrySize, 2)
	off, _ := h.EntryOffset(1)
	PutText(b, off+EntrySrcNameOffset, "GPU temperature")
	PutText(b, off+EntrySrcUnitsOffset, "°C")
	PutText(b, off+EntryLocalizedSrcNameOffset, "Temperatura GPU")
	PutText(b, off+EntryLocalizedSrcUnitsOffset, "°C")
	PutText(b, off+EntryRecommendedFormatOffset, "%.0f")
	PutF32(b, off+EntryDataOffset, 61.5)
	PutF32(b, off+EntryMinLimitOffset, 0)
	PutF32(b, off+EntryMaxLimitOffset, 100)
	PutU32(b, off+EntryFlagsOffset, EntryFlagShowInOSD|EntryFlagShowInTray)
	PutU32(b, off+EntryGPUOffset, 1)
	PutU32(b, off+EntrySrcIDOffset, 0)

	e, err := ParseEntry(b, h, 1)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if string(e.SrcName) != "GPU temperature" || string(e.LocalizedSrcName) != "Temperatura GPU" {
		t.Fatalf("names mismatch: %q / %q", e.SrcName, e.LocalizedSrcName)
	}
	if string(e.SrcUnits) != "°C" || string(e.RecommendedFormat) != "%.0f" {
		t.Fatalf("units/format mismatch: %q / %q", e.SrcUnits, e.RecommendedFormat)
	}
	if e.Data != 61.5 || e.MinLimit != 0 || e.MaxLimit != 100 {
		t.Fatalf("values mismatch: %+v", e)
	}
	if e.Flags != EntryFlagShowInOSD|EntryFlagShowInTray || e.GPU != 1 {
		t.Fatalf("flags/gpu mismatch: %+v", e)
	}

	empty, err := ParseEntry(b, h, 0)
	if err != nil {
		t.Fatalf("ParseEntry(0): %v", err)
	}
	if len(empty.SrcName) != 0 || empty.Data != 0 {
		t.Fatalf("zeroed entry should decode empty: %+v", empty)
	}
}

func TestParseEntryAliasesView(t *testing.T) {
	b, h := buildEntryView(t, EntrySize, 1)
	PutText(b, HeaderSize+EntrySrcNameOffset, "CPU")

	e, err := ParseEntry(b, h, 0)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	b[HeaderSize] = 'G'
	if string(e.SrcName) != "GPU" {
		t.Fatalf("entry text should alias the view, got %q", e.SrcName)
	}
}

func TestParseEntryUnterminatedText(t *testing.T) {
	b, h := buildEntryView(t, EntrySize, 1)
	long := strings.Repeat("x", TextCapacity+20)
	PutText(b, HeaderSize+EntrySrcNameOffset, long)

	e, err := ParseEntry(b, h, 0)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if len(e.SrcName) != TextCapacity {
		t.Fatalf("unterminated name length = %d, want %d", len(e.SrcName), TextCapacity)
	}
}

func TestParseEntryV1Stride(t *testing.T) {
	const v1Size = EntryGPUOffset
	b, h := buildEntryView(t, v1Size, 2)
	off, _ := h.EntryOffset(0)
	PutF32(b, off+EntryDataOffset, 42)
	PutU32(b, off+EntryFlagsOffset, EntryFlagShowInLCD)
	// Bytes right after entry 0 belong to entry 1 and must not leak into
	// entry 0's gpu field.
	PutText(b, off+v1Size, "next")

	e, err := ParseEntry(b, h, 0)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if e.Data != 42 || e.Flags != EntryFlagShowInLCD {
		t.Fatalf("v1 entry mismatch: %+v", e)
	}
	if e.GPU != 0 || e.SrcID != 0 {
		t.Fatalf("fields beyond the stride must be zero: gpu=%d src=%d", e.GPU, e.SrcID)
	}
}

func TestParseEntryBounds(t *testing.T) {
	b, h := buildEntryView(t, EntrySize, 2)

	if _, err := ParseEntry(b, h, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("index == count should be out of bounds, got %v", err)
	}

	h.EntryCount = 3
	if _, err := ParseEntry(b, h, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("record past the view should be out of bounds, got %v", err)
	}

	h.HeaderSize = 0xFFFFFFFF
	if _, err := ParseEntry(b, h, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("header size past the view should be out of bounds, got %v", err)
	}
}

func TestParseGPUEntry(t *testing.T) {
	h := Header{
		Signature:     Signature,
		HeaderSize:    HeaderSize,
		EntryCount:    1,
		EntrySize:     EntrySize,
		GPUEntryCount: 1,
		GPUEntrySize:  GPUEntrySize,
	}
	b := make([]byte, HeaderSize+EntrySize+GPUEntrySize)
	PutHeader(b, h)
	off, _ := h.GPUEntryOffset(0)
	PutText(b, off+GPUEntryIDOffset, "VEN_10DE&DEV_2684")
	PutText(b, off+GPUEntryFamilyOffset, "AD102-A")
	PutText(b, off+GPUEntryDeviceOffset, "GeForce RTX 4090")
	PutText(b, off+GPUEntryDriverOffset, "551.86")
	PutText(b, off+GPUEntryBIOSOffset, "95.02.18.80.87")
	PutU32(b, off+GPUEntryMemAmountOffset, 24*1024*1024)

	g, err := ParseGPUEntry(b, h, 0)
	if err != nil {
		t.Fatalf("ParseGPUEntry: %v", err)
	}
	if string(g.Device) != "GeForce RTX 4090" || string(g.Family) != "AD102-A" {
		t.Fatalf("gpu text mismatch: %q / %q", g.Device, g.Family)
	}
	if string(g.ID) != "VEN_10DE&DEV_2684" || string(g.Driver) != "551.86" || string(g.BIOS) != "95.02.18.80.87" {
		t.Fatalf("gpu ids mismatch: %+v", g)
	}
	if g.MemAmount != 24*1024*1024 {
		t.Fatalf("mem amount = %d", g.MemAmount)
	}

	if _, err := ParseGPUEntry(b[:len(b)-1], h, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}
