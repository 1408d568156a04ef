package bytecode

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Metadata blob produced by solc 0.8.14:
// {"ipfs": h'1220EB23...', "solc": 0.8.14} followed by the 0x0033 length suffix.
const solcMetadataHex = "a2646970667358221220eb23ce2c13ea8739368f952f6c6a4b1f0623d147d2a19b6d4d26a61ab03fcd3e64736f6c634300080e0033"

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return b
}

func TestExtractTrailingMetadata(t *testing.T) {
	meta := mustDecode(t, solcMetadataHex)
	code := mustDecode(t, "608060405234801561001057600080fd5b50")

	t.Run("code with trailing metadata", func(t *testing.T) {
		buf := append(append([]byte{}, code...), meta...)
		m, ok := ExtractTrailingMetadata(buf)
		if !ok {
			t.Fatal("metadata not extracted")
		}
		if !bytes.Equal(m.Raw, meta) {
			t.Errorf("Raw = %x, want %x", m.Raw, meta)
		}
		if m.Length != len(meta) {
			t.Errorf("Length = %d, want %d", m.Length, len(meta))
		}
		if !bytes.Equal(buf[:len(buf)-m.Length], code) {
			t.Error("code prefix was not left intact")
		}
	})

	t.Run("metadata alone", func(t *testing.T) {
		m, ok := ExtractTrailingMetadata(meta)
		if !ok {
			t.Fatal("metadata not extracted")
		}
		if !bytes.Equal(m.Raw, meta) {
			t.Errorf("Raw = %x, want %x", m.Raw, meta)
		}
	})

	t.Run("plain code without metadata", func(t *testing.T) {
		if _, ok := ExtractTrailingMetadata(code); ok {
			t.Error("extracted metadata from plain code")
		}
	})

	t.Run("too short", func(t *testing.T) {
		if _, ok := ExtractTrailingMetadata([]byte{0x33}); ok {
			t.Error("extracted metadata from a single byte")
		}
	})

	t.Run("zero length suffix", func(t *testing.T) {
		if _, ok := ExtractTrailingMetadata([]byte{0xa0, 0x00, 0x00}); ok {
			t.Error("extracted metadata with zero length")
		}
	})

	t.Run("length exceeds buffer", func(t *testing.T) {
		if _, ok := ExtractTrailingMetadata([]byte{0xa0, 0xff, 0xff}); ok {
			t.Error("extracted metadata longer than buffer")
		}
	})

	t.Run("declared region is not a CBOR map", func(t *testing.T) {
		// Correct length suffix but the payload is a CBOR text string.
		buf := append(mustDecode(t, "6449504653"), 0x00, 0x05)
		if _, ok := ExtractTrailingMetadata(buf); ok {
			t.Error("extracted metadata from non-map payload")
		}
	})

	t.Run("truncated CBOR map", func(t *testing.T) {
		// Length suffix claims 4 bytes, but the map declares more pairs
		// than the region holds.
		buf := []byte{0x00, 0xa2, 0x64, 0x69, 0x70, 0x00, 0x04}
		if _, ok := ExtractTrailingMetadata(buf); ok {
			t.Error("extracted truncated metadata")
		}
	})
}

func TestMetadataEqual(t *testing.T) {
	meta := mustDecode(t, solcMetadataHex)
	a, ok := ExtractTrailingMetadata(meta)
	if !ok {
		t.Fatal("fixture did not parse")
	}
	b, _ := ExtractTrailingMetadata(meta)
	if !a.Equal(b) {
		t.Error("identical blobs compared unequal")
	}

	other := append([]byte{}, meta...)
	other[10] ^= 0xff
	c, ok := ExtractTrailingMetadata(other)
	if !ok {
		t.Fatal("mutated fixture did not parse")
	}
	if a.Equal(c) {
		t.Error("different blobs compared equal")
	}
}
