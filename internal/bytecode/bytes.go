package bytecode

import "bytes"

// Bytes is an immutable byte sequence. It is the payload type flowing through
// every decomposition step; callers must not mutate it after construction.
type Bytes []byte

func (b Bytes) String() string {
	return EncodeHex(b)
}

// Equal reports whether two byte sequences have identical contents.
func (b Bytes) Equal(other Bytes) bool {
	return bytes.Equal(b, other)
}
