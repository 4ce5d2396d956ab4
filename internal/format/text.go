package format

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text encodings the source may use for its char buffers. Afterburner writes
// UTF-8 for localized strings on current builds; older builds used the ANSI
// code page.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// LookupEncoding returns the decoder for name. The empty string selects
// UTF-8. ok is false for unknown names.
func LookupEncoding(name string) (encoding.Encoding, bool) {
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8, true
	case EncodingWindows1252, "cp1252", "ansi":
		return charmap.Windows1252, true
	default:
		return nil, false
	}
}

// DecodeText converts a NUL-trimmed buffer to a Go string. Invalid input is
// replaced with U+FFFD; the conversion never fails.
func DecodeText(b []byte, enc encoding.Encoding) string {
	if len(b) == 0 {
		return ""
	}
	if enc == nil {
		enc = unicode.UTF8
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil || !utf8.Valid(out) {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// SignatureText renders a signature as its four tag characters, most
// significant byte first, so Signature renders as "MAHM".
func SignatureText(sig uint32) string {
	tag := []byte{byte(sig >> 24), byte(sig >> 16), byte(sig >> 8), byte(sig)}
	return DecodeText(tag, unicode.UTF8)
}
