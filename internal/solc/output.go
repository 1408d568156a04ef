// Package solc models the output of the Solidity compiler's standard JSON
// interface, as produced by an external compiler-invocation collaborator.
package solc

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// CompilerOutput is the standard JSON output of a compilation run, keyed by
// source file path and contract name.
// https://docs.soliditylang.org/en/latest/using-the-compiler.html#output-description
type CompilerOutput struct {
	Contracts map[string]map[string]Contract `json:"contracts"`
	Errors    []OutputError                  `json:"errors,omitempty"`
}

// Contract is the per-contract slice of the compiler output.
type Contract struct {
	EVM EVM `json:"evm"`
}

// EVM holds the compiled bytecode objects.
type EVM struct {
	// Bytecode is the creation bytecode (evm.bytecode).
	Bytecode BytecodeObject `json:"bytecode"`
	// DeployedBytecode is the runtime bytecode (evm.deployedBytecode).
	DeployedBytecode BytecodeObject `json:"deployedBytecode"`
}

// BytecodeObject is a compiled bytecode entry. Object is a hex string and may
// contain unresolved library placeholders of the form __$<34 hex chars>$__.
type BytecodeObject struct {
	Object         string          `json:"object"`
	LinkReferences json.RawMessage `json:"linkReferences,omitempty"`
}

// OutputError is a compiler diagnostic.
type OutputError struct {
	Severity  string `json:"severity"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Component string `json:"component,omitempty"`
}

// ParseOutput decodes a standard JSON output document.
func ParseOutput(data []byte) (*CompilerOutput, error) {
	var out CompilerOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding compiler output: %w", err)
	}
	return &out, nil
}

// FindContract locates a contract by name. When filePath is non-empty the
// lookup is exact; otherwise every file is scanned and the first contract
// with a matching name wins.
func (o *CompilerOutput) FindContract(contractName, filePath string) (*Contract, bool) {
	if filePath != "" {
		c, ok := o.Contracts[filePath][contractName]
		if !ok {
			return nil, false
		}
		return &c, true
	}
	for _, file := range o.Contracts {
		if c, ok := file[contractName]; ok {
			return &c, true
		}
	}
	return nil, false
}

// HasErrors reports whether the output contains an error-severity diagnostic.
// Warnings do not count; a run that produced bytecode is usable.
func (o *CompilerOutput) HasErrors() bool {
	for _, e := range o.Errors {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// Library placeholder left in bytecode for unlinked libraries: __$<hash>$__.
var libraryPlaceholder = regexp.MustCompile(`__\$[a-f0-9]{34}\$__`)

// HasLibraryPlaceholders reports whether a bytecode hex string still contains
// unlinked library placeholders, which make it undecodable as hex.
func HasLibraryPlaceholders(object string) bool {
	return libraryPlaceholder.MatchString(object)
}
