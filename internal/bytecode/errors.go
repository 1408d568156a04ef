package bytecode

import "fmt"

// InitializationErrorKind identifies which input was rejected during parsing.
type InitializationErrorKind int

const (
	// KindInvalidCreationTxInput means the creation transaction input was
	// empty or not a valid hex string.
	KindInvalidCreationTxInput InitializationErrorKind = iota
	// KindInvalidDeployedBytecode means the deployed bytecode was empty or
	// not a valid hex string.
	KindInvalidDeployedBytecode
	// KindMetadataHashMismatch means the creation transaction input never
	// embeds a metadata blob equal to the one trailing the deployed bytecode.
	KindMetadataHashMismatch
)

// InitializationError reports malformed or structurally unrelated inputs
// supplied by the requester. The offending original string is preserved for
// diagnostics; for metadata mismatches the expected blob is carried instead.
type InitializationError struct {
	Kind     InitializationErrorKind
	Input    string
	Metadata Mismatch[Bytes]
}

func (e *InitializationError) Error() string {
	switch e.Kind {
	case KindInvalidCreationTxInput:
		return fmt.Sprintf("creation transaction input is invalid (either is empty or is not a valid hex string): %s", e.Input)
	case KindInvalidDeployedBytecode:
		return fmt.Sprintf("deployed bytecode is invalid (either is empty or is not a valid hex string): %s", e.Input)
	case KindMetadataHashMismatch:
		return fmt.Sprintf("creation transaction input has different metadata hash to deployed bytecode. %s", e.Metadata)
	default:
		return "unknown initialization error"
	}
}

func invalidCreationTxInput(input string) *InitializationError {
	return &InitializationError{Kind: KindInvalidCreationTxInput, Input: input}
}

func invalidDeployedBytecode(input string) *InitializationError {
	return &InitializationError{Kind: KindInvalidDeployedBytecode, Input: input}
}

func metadataHashMismatch(m Mismatch[Bytes]) *InitializationError {
	return &InitializationError{Kind: KindMetadataHashMismatch, Metadata: m}
}
