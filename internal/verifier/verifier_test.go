package verifier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/solverify/internal/bytecode"
	"github.com/pendergraft/solverify/internal/solc"
)

// Fixtures compiled from a small ownership contract with solc 0.8.14.
const (
	creationCodeHex = "608060405234801561001057600080fd5b5060405161022038038061022083398101604081905261002f91610074565b600080546001600160a01b0319163390811782556040519091907f342827c97908e5e2f71151c08502a66d44b6f758e3ac2f1de95f02eb95f0a735908290a35061008d565b60006020828403121561008657600080fd5b5051919050565b6101848061009c6000396000f3fe608060405234801561001057600080fd5b50600436106100365760003560e01c8063893d20e81461003b578063a6f9dae11461005a575b600080fd5b600054604080516001600160a01b039092168252519081900360200190f35b61006d61006836600461011e565b61006f565b005b6000546001600160a01b031633146100c35760405162461bcd60e51b815260206004820152601360248201527221b0b63632b91034b9903737ba1037bbb732b960691b604482015260640160405180910390fd5b600080546040516001600160a01b03808516939216917f342827c97908e5e2f71151c08502a66d44b6f758e3ac2f1de95f02eb95f0a73591a3600080546001600160a01b0319166001600160a01b0392909216919091179055565b60006020828403121561013057600080fd5b81356001600160a01b038116811461014757600080fd5b939250505056fe"
	runtimeCodeHex  = "608060405234801561001057600080fd5b50600436106100365760003560e01c8063893d20e81461003b578063a6f9dae11461005a575b600080fd5b600054604080516001600160a01b039092168252519081900360200190f35b61006d61006836600461011e565b61006f565b005b6000546001600160a01b031633146100c35760405162461bcd60e51b815260206004820152601360248201527221b0b63632b91034b9903737ba1037bbb732b960691b604482015260640160405180910390fd5b600080546040516001600160a01b03808516939216917f342827c97908e5e2f71151c08502a66d44b6f758e3ac2f1de95f02eb95f0a73591a3600080546001600160a01b0319166001600160a01b0392909216919091179055565b60006020828403121561013057600080fd5b81356001600160a01b038116811461014757600080fd5b939250505056fe"
	ctorArgsHex     = "0000000000000000000000000000000000000000000000000000000000000fff"

	// {"ipfs": ..., "solc": 0.8.14}
	metadataHex = "a2646970667358221220eb23ce2c13ea8739368f952f6c6a4b1f0623d147d2a19b6d4d26a61ab03fcd3e64736f6c634300080e0033"
	// Same IPFS hash, solc 0.8.0.
	otherMetadataHex = "a2646970667358221220eb23ce2c13ea8739368f952f6c6a4b1f0623d147d2a19b6d4d26a61ab03fcd3e64736f6c63430008000033"
)

func compilerOutput(filePath, name, creation, runtime string) *solc.CompilerOutput {
	return &solc.CompilerOutput{
		Contracts: map[string]map[string]solc.Contract{
			filePath: {
				name: {
					EVM: solc.EVM{
						Bytecode:         solc.BytecodeObject{Object: creation},
						DeployedBytecode: solc.BytecodeObject{Object: runtime},
					},
				},
			},
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		v, err := New("Owner", "", creationCodeHex+metadataHex+ctorArgsHex, runtimeCodeHex+metadataHex)
		require.NoError(t, err)
		assert.Equal(t, "Owner", v.ContractName())
		assert.Equal(t, bytecode.EncodeHex(v.ConstructorArgs()), "0x"+ctorArgsHex)
	})

	t.Run("valid inputs with 0x prefix", func(t *testing.T) {
		_, err := New("Owner", "", "0x"+creationCodeHex+metadataHex+ctorArgsHex, "0x"+runtimeCodeHex+metadataHex)
		require.NoError(t, err)
	})

	t.Run("empty creation tx input", func(t *testing.T) {
		_, err := New("Owner", "", "", runtimeCodeHex+metadataHex)
		var initErr *bytecode.InitializationError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, bytecode.KindInvalidCreationTxInput, initErr.Kind)
		assert.Equal(t, "", initErr.Input)
	})

	t.Run("creation tx input as invalid hex", func(t *testing.T) {
		_, err := New("Owner", "", "0xabcdefghij", runtimeCodeHex+metadataHex)
		var initErr *bytecode.InitializationError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, bytecode.KindInvalidCreationTxInput, initErr.Kind)
		assert.Equal(t, "0xabcdefghij", initErr.Input)
	})

	t.Run("empty deployed bytecode", func(t *testing.T) {
		_, err := New("Owner", "", creationCodeHex+metadataHex, "")
		var initErr *bytecode.InitializationError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, bytecode.KindInvalidDeployedBytecode, initErr.Kind)
	})

	t.Run("deployed bytecode as invalid hex", func(t *testing.T) {
		_, err := New("Owner", "", creationCodeHex+metadataHex, "0xabcdefghij")
		var initErr *bytecode.InitializationError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, bytecode.KindInvalidDeployedBytecode, initErr.Kind)
		assert.Equal(t, "0xabcdefghij", initErr.Input)
	})

	t.Run("metadata hash mismatch", func(t *testing.T) {
		_, err := New("Owner", "", creationCodeHex+otherMetadataHex, runtimeCodeHex+metadataHex)
		var initErr *bytecode.InitializationError
		require.ErrorAs(t, err, &initErr)
		require.Equal(t, bytecode.KindMetadataHashMismatch, initErr.Kind)
		require.NotNil(t, initErr.Metadata.Expected)
		assert.Equal(t, "0x"+metadataHex, initErr.Metadata.Expected.String())
		assert.Nil(t, initErr.Metadata.Found)
	})
}

func TestVerify(t *testing.T) {
	newVerifier := func(t *testing.T) *Verifier {
		t.Helper()
		v, err := New("Owner", "", creationCodeHex+metadataHex+ctorArgsHex, runtimeCodeHex+metadataHex)
		require.NoError(t, err)
		return v
	}

	t.Run("full match", func(t *testing.T) {
		v := newVerifier(t)
		out := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, runtimeCodeHex+metadataHex)

		outcome, err := v.Verify(out)
		require.NoError(t, err)
		assert.Equal(t, MatchFull, outcome.Match)
		assert.Nil(t, outcome.RuntimeMismatch)
		assert.Nil(t, outcome.CreationMismatch)
		assert.Equal(t, "0x"+ctorArgsHex, outcome.ConstructorArgs.String())
	})

	t.Run("partial match on differing metadata", func(t *testing.T) {
		// Same code regions, compiler embedded a different metadata blob.
		v, err := New("Owner", "", creationCodeHex+otherMetadataHex+ctorArgsHex, runtimeCodeHex+otherMetadataHex)
		require.NoError(t, err)
		out := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, runtimeCodeHex+metadataHex)

		outcome, err := v.Verify(out)
		require.NoError(t, err)
		assert.Equal(t, MatchPartial, outcome.Match)
	})

	t.Run("runtime code mismatch", func(t *testing.T) {
		v := newVerifier(t)
		divergent := runtimeCodeHex[:len(runtimeCodeHex)-2] + "ff"
		out := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, divergent+metadataHex)

		outcome, err := v.Verify(out)
		require.NoError(t, err)
		assert.Equal(t, MatchNone, outcome.Match)
		require.NotNil(t, outcome.RuntimeMismatch)
		assert.NotNil(t, outcome.RuntimeMismatch.Expected)
		assert.NotNil(t, outcome.RuntimeMismatch.Found)
	})

	t.Run("creation code mismatch", func(t *testing.T) {
		v := newVerifier(t)
		divergent := "ff" + creationCodeHex[2:]
		out := compilerOutput("contracts/Owner.sol", "Owner", divergent+metadataHex, runtimeCodeHex+metadataHex)

		outcome, err := v.Verify(out)
		require.NoError(t, err)
		assert.Equal(t, MatchNone, outcome.Match)
		assert.Nil(t, outcome.RuntimeMismatch)
		require.NotNil(t, outcome.CreationMismatch)
	})

	t.Run("contract not found", func(t *testing.T) {
		v := newVerifier(t)
		out := compilerOutput("contracts/Token.sol", "Token", creationCodeHex+metadataHex, runtimeCodeHex+metadataHex)

		_, err := v.Verify(out)
		assert.True(t, errors.Is(err, ErrContractNotFound))
	})

	t.Run("file path restricts lookup", func(t *testing.T) {
		v, err := New("Owner", "contracts/Other.sol", creationCodeHex+metadataHex+ctorArgsHex, runtimeCodeHex+metadataHex)
		require.NoError(t, err)
		out := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, runtimeCodeHex+metadataHex)

		_, err = v.Verify(out)
		assert.True(t, errors.Is(err, ErrContractNotFound))
	})

	t.Run("unlinked library placeholders", func(t *testing.T) {
		v := newVerifier(t)
		object := fmt.Sprintf("6080__$%034x$__6040", 0x1234)
		out := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, object)

		_, err := v.Verify(out)
		assert.True(t, errors.Is(err, ErrInvalidCompiledBytecode))
	})

	t.Run("verify is idempotent", func(t *testing.T) {
		v := newVerifier(t)
		out := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, runtimeCodeHex+metadataHex)

		first, err := v.Verify(out)
		require.NoError(t, err)
		second, err := v.Verify(out)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("retry across candidate outputs", func(t *testing.T) {
		v := newVerifier(t)
		wrong := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, "ff"+runtimeCodeHex[2:]+metadataHex)
		right := compilerOutput("contracts/Owner.sol", "Owner", creationCodeHex+metadataHex, runtimeCodeHex+metadataHex)

		outcome, err := v.Verify(wrong)
		require.NoError(t, err)
		assert.Equal(t, MatchNone, outcome.Match)

		outcome, err = v.Verify(right)
		require.NoError(t, err)
		assert.Equal(t, MatchFull, outcome.Match)
	})
}
