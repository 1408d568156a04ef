// Package domain contains the business logic for source verification.
package domain

import "github.com/pendergraft/solverify/internal/solc"

// Candidate is one freshly compiled output to compare the request against.
type Candidate struct {
	CompilerVersion string
	Output          *solc.CompilerOutput
}

// VerifyRequest is a request to verify claimed source against on-chain data.
type VerifyRequest struct {
	ContractName     string
	FilePath         string
	CreationTxInput  string
	DeployedBytecode string
	Candidates       []Candidate
}

// VerifyResult is the classified outcome of a verification run.
type VerifyResult struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"` // "full", "partial", "none", "failed"
	CompilerVersion string     `json:"compilerVersion,omitempty"`
	ConstructorArgs string     `json:"constructorArgs,omitempty"`
	Message         string     `json:"message,omitempty"`
	RuntimeDiff     *Diff      `json:"runtimeDiff,omitempty"`
	CreationDiff    *Diff      `json:"creationDiff,omitempty"`
	Attempts        []Attempt  `json:"attempts,omitempty"`
}

// Diff carries the diverging byte regions of a mismatch, hex encoded.
type Diff struct {
	Expected string `json:"expected,omitempty"`
	Found    string `json:"found,omitempty"`
}

// Attempt records how a single candidate fared.
type Attempt struct {
	CompilerVersion string `json:"compilerVersion"`
	Status          string `json:"status"` // match status or "error"
	Message         string `json:"message,omitempty"`
}

// ListFilter contains filter options for listing verification records.
type ListFilter struct {
	ContractName string
	Status       string
}

// PaginationParams contains pagination options.
type PaginationParams struct {
	Limit  int
	Cursor string
}

// Summary is a condensed verification record for listings.
type Summary struct {
	ID              string `json:"id"`
	ContractName    string `json:"contractName"`
	Status          string `json:"status"`
	CompilerVersion string `json:"compilerVersion,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

// ListResult is a page of verification summaries.
type ListResult struct {
	Data       []Summary `json:"data"`
	HasMore    bool      `json:"hasMore"`
	NextCursor string    `json:"nextCursor,omitempty"`
}
