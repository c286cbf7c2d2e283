// Package callsign validates and wraps the EOO callsign payload: a thin
// Go-side layer in front of the external LDPC/CRC-8 codec bound in
// internal/codec, responsible only for the TX-side character set and
// length rule the external library leaves to the caller.
package callsign

import "github.com/peterbmarks/radae-decoder/internal/codec"

// MaxChars is the longest callsign the TX-side encoder will accept. The
// limit counts characters kept after validation: dropped characters do not
// use up any of it, and kept characters beyond it are discarded.
const MaxChars = 8

// Valid reports whether r is one of the characters permitted in an EOO
// callsign: A-Z, 0-9, or the fixed ASCII 38-47 punctuation range.
func Valid(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 38 && r <= 47:
		return true
	default:
		return false
	}
}

// Sanitize uppercases s, truncates to MaxChars, and silently drops any
// character Valid rejects, matching the TX-side rule verbatim.
func Sanitize(s string) string {
	out := make([]rune, 0, MaxChars)
	for _, r := range s {
		if len(out) >= MaxChars {
			break
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if Valid(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

// Encoder produces the EOO bit vector for a TX-side callsign.
type Encoder struct {
	codec codec.CallsignCodec
}

// NewEncoder wraps an already-opened codec.CallsignCodec.
func NewEncoder(c codec.CallsignCodec) *Encoder {
	return &Encoder{codec: c}
}

// EncodeBits sanitizes raw and LDPC-encodes it into nEOOBits floats, ready
// for TXHandle.SetEOOBits.
func (e *Encoder) EncodeBits(raw string, nEOOBits int) []float32 {
	return e.codec.EncodeBits(Sanitize(raw), nEOOBits)
}

// Decoder recovers callsign text from RX-side EOO bits. It keeps no state;
// the RX pipeline publishes each accepted value to its telemetry.
type Decoder struct {
	codec codec.CallsignCodec
}

// NewDecoder wraps an already-opened codec.CallsignCodec.
func NewDecoder(c codec.CallsignCodec) *Decoder {
	return &Decoder{codec: c}
}

// Decode attempts to recover a callsign from bits. ok is false when the
// external decoder's LDPC BER estimate or CRC-8 check rejects the frame.
func (d *Decoder) Decode(bits []float32) (text string, ok bool) {
	return d.codec.DecodeBits(bits)
}
