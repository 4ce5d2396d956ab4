// Package format houses the low-level decoders for the MSI Afterburner
// hardware monitoring shared memory layout (MAHMSharedMemory.h). Decoders
// work on a mapped byte view, never copy text buffers, and perform every
// field read through bounds-checked sub-slices so a header that declares
// more records than the view holds fails with ErrOutOfBounds instead of
// reading foreign memory.
package format

// SegmentName is the name of the file mapping the source application
// publishes into.
const SegmentName = "MAHMSharedMemory"

const (
	// Signature is the 'MAHM' tag as the source compiles it: a multi-char
	// constant, stored little-endian, so the bytes in memory read "MHAM".
	Signature uint32 = 'M'<<24 | 'A'<<16 | 'H'<<8 | 'M'

	// DeadSignature is written by the source when it is running but has
	// stopped publishing.
	DeadSignature uint32 = 0x0000DEAD
)

// TextCapacity is the size of every embedded text buffer (MAX_PATH).
const TextCapacity = 260

// ============================================================================
// Header (MAHM_SHARED_MEMORY_HEADER)
// ============================================================================
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    dwSignature
//	 0x04    4    dwVersion (major << 16 | minor)
//	 0x08    4    dwHeaderSize, offset of the entry array
//	 0x0C    4    dwNumEntries
//	 0x10    4    dwEntrySize
//	 0x14    4    time (__time32_t)
//	 0x18    4    dwNumGpuEntries   (v2.0+)
//	 0x1C    4    dwGpuEntrySize    (v2.0+)
const (
	HeaderSignatureOffset     = 0x00
	HeaderVersionOffset       = 0x04
	HeaderSizeOffset          = 0x08
	HeaderEntryCountOffset    = 0x0C
	HeaderEntrySizeOffset     = 0x10
	HeaderTimeOffset          = 0x14
	HeaderGPUEntryCountOffset = 0x18
	HeaderGPUEntrySizeOffset  = 0x1C

	// HeaderMinSize is the v1.x header, which ends after the time field.
	HeaderMinSize = 0x18
	// HeaderSize is the v2.0 header including the GPU array descriptors.
	HeaderSize = 0x20
)

// ============================================================================
// Entry (MAHM_SHARED_MEMORY_ENTRY)
// ============================================================================
const (
	EntrySrcNameOffset           = 0
	EntrySrcUnitsOffset          = EntrySrcNameOffset + TextCapacity
	EntryLocalizedSrcNameOffset  = EntrySrcUnitsOffset + TextCapacity
	EntryLocalizedSrcUnitsOffset = EntryLocalizedSrcNameOffset + TextCapacity
	EntryRecommendedFormatOffset = EntryLocalizedSrcUnitsOffset + TextCapacity
	EntryDataOffset              = EntryRecommendedFormatOffset + TextCapacity // 1300
	EntryMinLimitOffset          = EntryDataOffset + 4
	EntryMaxLimitOffset          = EntryMinLimitOffset + 4
	EntryFlagsOffset             = EntryMaxLimitOffset + 4
	EntryGPUOffset               = EntryFlagsOffset + 4 // v2.0+
	EntrySrcIDOffset             = EntryGPUOffset + 4   // v2.0+

	// EntrySize is the v2.0 record size.
	EntrySize = EntrySrcIDOffset + 4 // 1324
	// EntryMinSize is the v1.x record size, which ends after the flags.
	EntryMinSize = EntryFlagsOffset + 4 // 1316
)

// Entry flag bits.
const (
	EntryFlagShowInOSD  uint32 = 0x00000001
	EntryFlagShowInLCD  uint32 = 0x00000002
	EntryFlagShowInTray uint32 = 0x00000004
)

// ============================================================================
// GPU entry (MAHM_SHARED_MEMORY_GPU_ENTRY, v2.0+)
// ============================================================================
const (
	GPUEntryIDOffset        = 0
	GPUEntryFamilyOffset    = GPUEntryIDOffset + TextCapacity
	GPUEntryDeviceOffset    = GPUEntryFamilyOffset + TextCapacity
	GPUEntryDriverOffset    = GPUEntryDeviceOffset + TextCapacity
	GPUEntryBIOSOffset      = GPUEntryDriverOffset + TextCapacity
	GPUEntryMemAmountOffset = GPUEntryBIOSOffset + TextCapacity // 1300

	// GPUEntrySize is the v2.0 GPU record size.
	GPUEntrySize = GPUEntryMemAmountOffset + 4 // 1304
	// GPUEntryMinSize is the shortest GPU stride accepted.
	GPUEntryMinSize = GPUEntrySize
)
