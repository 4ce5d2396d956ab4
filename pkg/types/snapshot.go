package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshuapare/mahmkit/internal/format"
)

// Signature is the four-character tag at the start of the segment.
type Signature uint32

// String renders the tag most significant byte first ("MAHM").
func (s Signature) String() string {
	return format.SignatureText(uint32(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Signature) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Version packs major << 16 | minor.
type Version uint32

// Major returns the high 16 bits.
func (v Version) Major() uint16 { return uint16(v >> 16) }

// Minor returns the low 16 bits.
func (v Version) Minor() uint16 { return uint16(v & 0xFFFF) }

// String renders "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// Header is the decoded segment header.
type Header struct {
	Signature     Signature `json:"signature" yaml:"signature" cbor:"signature"`
	Version       Version   `json:"version" yaml:"version" cbor:"version"`
	HeaderSize    uint32    `json:"header_size" yaml:"header_size" cbor:"header_size"`
	EntryCount    uint32    `json:"entry_count" yaml:"entry_count" cbor:"entry_count"`
	EntrySize     uint32    `json:"entry_size" yaml:"entry_size" cbor:"entry_size"`
	GPUEntryCount uint32    `json:"gpu_entry_count" yaml:"gpu_entry_count" cbor:"gpu_entry_count"`
	GPUEntrySize  uint32    `json:"gpu_entry_size" yaml:"gpu_entry_size" cbor:"gpu_entry_size"`
	Time          time.Time `json:"time" yaml:"time" cbor:"time"`
}

// EntryFlags is the visibility bitset of an entry.
type EntryFlags uint32

const (
	FlagShowInOSD  EntryFlags = 0x1
	FlagShowInLCD  EntryFlags = 0x2
	FlagShowInTray EntryFlags = 0x4
)

// Has reports whether every bit of f is set.
func (e EntryFlags) Has(f EntryFlags) bool { return e&f == f }

func (e EntryFlags) String() string {
	var parts []string
	if e.Has(FlagShowInOSD) {
		parts = append(parts, "osd")
	}
	if e.Has(FlagShowInLCD) {
		parts = append(parts, "lcd")
	}
	if e.Has(FlagShowInTray) {
		parts = append(parts, "tray")
	}
	if rest := e &^ (FlagShowInOSD | FlagShowInLCD | FlagShowInTray); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseEntryFlag maps "osd", "lcd" or "tray" to its bit.
func ParseEntryFlag(s string) (EntryFlags, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "osd":
		return FlagShowInOSD, nil
	case "lcd":
		return FlagShowInLCD, nil
	case "tray":
		return FlagShowInTray, nil
	default:
		return 0, fmt.Errorf("unknown entry flag %q (want osd, lcd or tray)", s)
	}
}

// Entry is one measured quantity published by the source.
type Entry struct {
	SrcName           string     `json:"src_name" yaml:"src_name" cbor:"src_name"`
	SrcUnits          string     `json:"src_units" yaml:"src_units" cbor:"src_units"`
	LocalizedSrcName  string     `json:"localized_src_name" yaml:"localized_src_name" cbor:"localized_src_name"`
	LocalizedSrcUnits string     `json:"localized_src_units" yaml:"localized_src_units" cbor:"localized_src_units"`
	RecommendedFormat string     `json:"recommended_format" yaml:"recommended_format" cbor:"recommended_format"`
	Data              float32    `json:"data" yaml:"data" cbor:"data"`
	MinLimit          float32    `json:"min_limit" yaml:"min_limit" cbor:"min_limit"`
	MaxLimit          float32    `json:"max_limit" yaml:"max_limit" cbor:"max_limit"`
	Flags             EntryFlags `json:"flags" yaml:"flags" cbor:"flags"`
	GPU               uint32     `json:"gpu" yaml:"gpu" cbor:"gpu"`
	SrcID             uint32     `json:"src_id" yaml:"src_id" cbor:"src_id"`
}

// String renders "<localized name>: <data> <localized units>".
func (e Entry) String() string {
	return fmt.Sprintf("%s: %.2f %s", e.LocalizedSrcName, e.Data, e.LocalizedSrcUnits)
}

// GPUEntry describes one GPU known to the source.
type GPUEntry struct {
	ID     string `json:"id" yaml:"id" cbor:"id"`
	Family string `json:"family" yaml:"family" cbor:"family"`
	Device string `json:"device" yaml:"device" cbor:"device"`
	Driver string `json:"driver" yaml:"driver" cbor:"driver"`
	BIOS   string `json:"bios" yaml:"bios" cbor:"bios"`
	// MemAmount is the on-board memory in KiB.
	MemAmount uint32 `json:"mem_amount" yaml:"mem_amount" cbor:"mem_amount"`
}

// Snapshot is the decoded state produced by one refresh. Header is nil when
// the source reported the dead sentinel.
type Snapshot struct {
	Header     *Header    `json:"header" yaml:"header" cbor:"header"`
	Entries    []Entry    `json:"entries" yaml:"entries" cbor:"entries"`
	GPUs       []GPUEntry `json:"gpus,omitempty" yaml:"gpus,omitempty" cbor:"gpus,omitempty"`
	Generation uint64     `json:"generation" yaml:"generation" cbor:"generation"`
}

// Active reports whether the source was publishing.
func (s Snapshot) Active() bool { return s.Header != nil }
