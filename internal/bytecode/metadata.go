package bytecode

import (
	"encoding/binary"

	"github.com/fxamacker/cbor"
)

// Metadata is the compiler-embedded blob trailing a bytecode sequence: a
// CBOR-encoded map followed by a 2-byte big-endian length of that map.
// Raw includes the length suffix, so len(Raw) == Length.
type Metadata struct {
	// Raw holds the encoded map plus its 2-byte length suffix.
	Raw Bytes
	// Length is the total byte length the blob occupies at the tail.
	Length int
}

// ExtractTrailingMetadata tries to split a trailing metadata blob off the end
// of b. The final 2 bytes are read as a big-endian length L; the L bytes
// before them must decode as a CBOR map. Both "no metadata" and "malformed
// metadata" return ok=false: the compiler appends the blob unconditionally
// unless disabled, so absence is a legitimate, non-fatal outcome.
func ExtractTrailingMetadata(b Bytes) (Metadata, bool) {
	if len(b) < 2 {
		return Metadata{}, false
	}
	length := int(binary.BigEndian.Uint16(b[len(b)-2:]))
	if length == 0 || length+2 > len(b) {
		return Metadata{}, false
	}

	encoded := b[len(b)-2-length : len(b)-2]
	if !isCBORMap(encoded) {
		return Metadata{}, false
	}

	raw := make(Bytes, length+2)
	copy(raw, b[len(b)-2-length:])
	return Metadata{Raw: raw, Length: length + 2}, true
}

// isCBORMap reports whether data is exactly one well-formed CBOR map.
// Structural validation only; the map's contents are not interpreted.
func isCBORMap(data []byte) bool {
	var v any
	if err := cbor.Unmarshal(data, &v); err != nil {
		return false
	}
	switch v.(type) {
	case map[any]any, map[string]any:
		return true
	}
	return false
}

// Equal reports byte-exact equality of two metadata blobs.
func (m Metadata) Equal(other Metadata) bool {
	return m.Raw.Equal(other.Raw)
}
