// Package bytecode decomposes EVM bytecode into its structural parts:
// executable code, trailing compiler metadata, and constructor arguments.
package bytecode

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidHex is returned when an input string is empty or not valid hex.
var ErrInvalidHex = errors.New("invalid hex string")

// DecodeHex decodes a hex string with an optional 0x/0X prefix.
// Empty input, odd length, and non-hex characters are all rejected.
func DecodeHex(s string) ([]byte, error) {
	trimmed := s
	if len(trimmed) >= 2 && (strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X")) {
		trimmed = trimmed[2:]
	}
	if trimmed == "" {
		return nil, ErrInvalidHex
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, ErrInvalidHex
	}
	return b, nil
}

// EncodeHex encodes bytes as a 0x-prefixed hex string for diagnostics.
func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
