package bytecode

import "bytes"

// DeployedBytecode is the structural decomposition of the bytecode stored
// on-chain for a contract: the runtime code actually executed by the EVM and,
// when the compiler appended one, the trailing metadata blob.
type DeployedBytecode struct {
	// Code is the runtime code with any trailing metadata removed. Never empty.
	Code Bytes
	// Metadata is the trailing blob, if present.
	Metadata *Metadata
}

// ParseDeployedBytecode decomposes a hex-encoded deployed bytecode string.
// Pure structural decomposition; no verification-level comparison happens here.
func ParseDeployedBytecode(s string) (*DeployedBytecode, error) {
	raw, err := DecodeHex(s)
	if err != nil {
		return nil, invalidDeployedBytecode(s)
	}

	if meta, ok := ExtractTrailingMetadata(raw); ok {
		if meta.Length == len(raw) {
			// A bare metadata blob leaves no runtime code to verify.
			return nil, invalidDeployedBytecode(s)
		}
		return &DeployedBytecode{
			Code:     Bytes(raw[:len(raw)-meta.Length]),
			Metadata: &meta,
		}, nil
	}
	return &DeployedBytecode{Code: raw}, nil
}

// CreationBytecode is the structural decomposition of a contract-creation
// transaction's input data: the creation-phase code (constructor logic plus
// the embedded runtime copy), the metadata blob shared with the deployed
// bytecode, and any ABI-encoded constructor arguments appended after it.
type CreationBytecode struct {
	// Code is everything before the metadata anchor. Never empty.
	Code Bytes
	// Metadata is the blob matched against the deployed bytecode's, if any.
	Metadata *Metadata
	// ConstructorArgs is the non-empty suffix following the metadata, if any.
	ConstructorArgs Bytes
}

// ParseCreationBytecode decomposes a hex-encoded creation transaction input,
// using an already-parsed deployed bytecode as the locating anchor.
//
// Solidity appends the same metadata blob to both the runtime bytecode and
// the tail of the creation bytecode; constructor arguments follow with no
// length prefix, so the deployed contract's own trailing metadata is the only
// reliable delimiter. The search runs from the end of the buffer backwards
// and is byte-exact: a reordered but semantically identical encoding does
// not match and is reported as a metadata hash mismatch.
func ParseCreationBytecode(s string, deployed *DeployedBytecode) (*CreationBytecode, error) {
	raw, err := DecodeHex(s)
	if err != nil {
		return nil, invalidCreationTxInput(s)
	}

	if deployed.Metadata == nil {
		// No anchor to separate a suffix with.
		return &CreationBytecode{Code: raw}, nil
	}

	anchor := deployed.Metadata.Raw
	idx := bytes.LastIndex(raw, anchor)
	if idx == -1 {
		return nil, metadataHashMismatch(Expect(anchor))
	}
	if idx == 0 {
		// The anchor sits at the very start, so there is no creation code.
		return nil, invalidCreationTxInput(s)
	}

	cb := &CreationBytecode{
		Code:     Bytes(raw[:idx]),
		Metadata: deployed.Metadata,
	}
	if rest := raw[idx+len(anchor):]; len(rest) > 0 {
		cb.ConstructorArgs = Bytes(rest)
	}
	return cb, nil
}
