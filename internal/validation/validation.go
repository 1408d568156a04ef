// Package validation provides request-level input validation for solverify.
package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// Solidity identifiers: letters, digits, dollar signs, underscores; no
// leading digit.
var contractNameRegex = regexp.MustCompile(`^[a-zA-Z$_][a-zA-Z0-9$_]*$`)

// ValidateContractName validates a contract name
func ValidateContractName(name string) error {
	if name == "" {
		return errors.New("contract name cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("contract name too long (max 256 chars)")
	}
	if !contractNameRegex.MatchString(name) {
		return errors.New("invalid contract name: must be a Solidity identifier")
	}
	return nil
}

// ValidateFilePath validates an optional source file path
func ValidateFilePath(path string) error {
	if path == "" {
		return nil
	}
	if len(path) > 4096 {
		return errors.New("file path too long")
	}
	for i := 0; i < len(path); i++ {
		if path[i] == 0 {
			return errors.New("file path contains a NUL byte")
		}
	}
	return nil
}

// ValidateBytecodeSize caps the length of a submitted hex string before any
// decoding happens. maxKB <= 0 disables the check.
func ValidateBytecodeSize(hexInput string, maxKB int) error {
	if maxKB <= 0 {
		return nil
	}
	// Two hex chars per byte, plus an optional 0x prefix.
	maxChars := maxKB*1024*2 + 2
	if len(hexInput) > maxChars {
		return fmt.Errorf("bytecode too large: %d chars exceeds %d KB limit", len(hexInput), maxKB)
	}
	return nil
}
