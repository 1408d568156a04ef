// Package verifier compares requester-supplied bytecode against freshly
// compiled output to decide whether claimed source code is authentic.
package verifier

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pendergraft/solverify/internal/bytecode"
	"github.com/pendergraft/solverify/internal/solc"
)

// Verification-time failures, distinct from a structural mismatch: these mean
// verification could not be performed, not that it concluded "not verified".
var (
	// ErrContractNotFound means the requested contract is absent from the
	// compiler output.
	ErrContractNotFound = errors.New("contract not found in compiler output")
	// ErrInvalidCompiledBytecode means compiler-produced bytecode failed the
	// same structural decomposition applied to request inputs. That points at
	// a compiler or tooling bug, not at the requester.
	ErrInvalidCompiledBytecode = errors.New("compiled bytecode is invalid")
)

// MatchType classifies a verification outcome.
type MatchType string

const (
	// MatchFull means code and metadata are byte-identical.
	MatchFull MatchType = "full"
	// MatchPartial means code regions match but metadata blobs differ, e.g.
	// from non-deterministic content-addressing fields inside the metadata.
	MatchPartial MatchType = "partial"
	// MatchNone means the code regions diverge.
	MatchNone MatchType = "none"
)

// Outcome is the classified result of one comparison. A MatchNone outcome is
// a successful verification that concluded "not verified"; the diverging
// region is carried for diagnosis.
type Outcome struct {
	Match MatchType

	// RuntimeMismatch is set when the runtime code regions diverge.
	RuntimeMismatch *bytecode.Mismatch[bytecode.Bytes]
	// CreationMismatch is set when the creation-phase code regions diverge.
	CreationMismatch *bytecode.Mismatch[bytecode.Bytes]

	// ConstructorArgs are the ABI-encoded arguments recovered from the
	// creation input. Never part of the comparison; they vary per deployment.
	ConstructorArgs bytecode.Bytes
}

// Verifier holds one verification request's parsed inputs. It is immutable
// after construction: Verify may be called any number of times against
// different compiler outputs without re-parsing.
type Verifier struct {
	contractName string
	filePath     string // empty means unknown; every output file is scanned

	creation *bytecode.CreationBytecode
	deployed *bytecode.DeployedBytecode
}

// New parses and cross-validates the requester-supplied inputs. The deployed
// bytecode is parsed first since it anchors the creation input parse; the
// first failure is returned and no partial Verifier is ever produced.
func New(contractName, filePath, creationTxInput, deployedBytecode string) (*Verifier, error) {
	deployed, err := bytecode.ParseDeployedBytecode(deployedBytecode)
	if err != nil {
		return nil, err
	}
	creation, err := bytecode.ParseCreationBytecode(creationTxInput, deployed)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		contractName: contractName,
		filePath:     filePath,
		creation:     creation,
		deployed:     deployed,
	}, nil
}

// ContractName returns the name of the contract under verification.
func (v *Verifier) ContractName() string { return v.contractName }

// ConstructorArgs returns the constructor arguments recovered at parse time.
func (v *Verifier) ConstructorArgs() bytecode.Bytes { return v.creation.ConstructorArgs }

// Verify compares the parsed request inputs against a compiled candidate and
// classifies the result. Pure and idempotent.
func (v *Verifier) Verify(output *solc.CompilerOutput) (*Outcome, error) {
	contract, ok := output.FindContract(v.contractName, v.filePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, v.contractName)
	}

	compiledDeployed, err := v.parseCompiledRuntime(contract)
	if err != nil {
		return nil, err
	}
	compiledCreation, err := v.parseCompiledCreation(contract, compiledDeployed)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{ConstructorArgs: v.creation.ConstructorArgs}

	if !v.deployed.Code.Equal(compiledDeployed.Code) {
		outcome.Match = MatchNone
		m := bytecode.NewMismatch(v.deployed.Code, compiledDeployed.Code)
		outcome.RuntimeMismatch = &m
		return outcome, nil
	}

	if ok, m := v.creationCodeMatches(compiledCreation); !ok {
		outcome.Match = MatchNone
		outcome.CreationMismatch = m
		return outcome, nil
	}

	if metadataEqual(v.deployed.Metadata, compiledDeployed.Metadata) {
		outcome.Match = MatchFull
	} else {
		outcome.Match = MatchPartial
	}
	return outcome, nil
}

func (v *Verifier) parseCompiledRuntime(contract *solc.Contract) (*bytecode.DeployedBytecode, error) {
	object := contract.EVM.DeployedBytecode.Object
	if solc.HasLibraryPlaceholders(object) {
		return nil, fmt.Errorf("%w: runtime bytecode contains unlinked library placeholders", ErrInvalidCompiledBytecode)
	}
	parsed, err := bytecode.ParseDeployedBytecode(object)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompiledBytecode, err)
	}
	return parsed, nil
}

func (v *Verifier) parseCompiledCreation(contract *solc.Contract, deployed *bytecode.DeployedBytecode) (*bytecode.CreationBytecode, error) {
	object := contract.EVM.Bytecode.Object
	if solc.HasLibraryPlaceholders(object) {
		return nil, fmt.Errorf("%w: creation bytecode contains unlinked library placeholders", ErrInvalidCompiledBytecode)
	}
	parsed, err := bytecode.ParseCreationBytecode(object, deployed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompiledBytecode, err)
	}
	return parsed, nil
}

// creationCodeMatches compares the creation-phase code regions. When the
// request inputs carried no metadata anchor the submitted creation code still
// holds any constructor arguments as an inseparable suffix, so the compiled
// code must instead be a prefix of it; the remainder is treated as arguments
// and excluded, like constructor arguments always are.
func (v *Verifier) creationCodeMatches(compiled *bytecode.CreationBytecode) (bool, *bytecode.Mismatch[bytecode.Bytes]) {
	submitted := v.creation.Code
	if v.creation.Metadata != nil {
		if submitted.Equal(compiled.Code) {
			return true, nil
		}
	} else if bytes.HasPrefix(submitted, compiled.Code) && len(compiled.Code) > 0 {
		return true, nil
	}
	m := bytecode.NewMismatch(submitted, compiled.Code)
	return false, &m
}

func metadataEqual(a, b *bytecode.Metadata) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
