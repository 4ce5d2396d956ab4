package printer

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// cborMode uses Core Deterministic Encoding so identical snapshots produce
// identical bytes. Signatures and versions go out as their text form.
var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString
	opts.Time = cbor.TimeRFC3339
	var err error
	cborMode, err = opts.EncMode()
	if err != nil {
		panic("printer: CBOR encoder initialization failed: " + err.Error())
	}
}

func (p *Printer) encode(v any) error {
	switch p.opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.writer)
		if p.opts.Indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return cborMode.NewEncoder(p.writer).Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", p.opts.Format)
	}
}
