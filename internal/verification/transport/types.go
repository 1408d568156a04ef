// Package transport provides HTTP request/response types for the verification domain.
package transport

import (
	"encoding/json"

	"github.com/pendergraft/solverify/internal/solc"
	"github.com/pendergraft/solverify/internal/verification/domain"
)

// VerifyRequest is the HTTP request body for submitting a verification.
type VerifyRequest struct {
	ContractName     string             `json:"contractName"`
	FilePath         string             `json:"filePath,omitempty"`
	CreationTxInput  string             `json:"creationTxInput"`
	DeployedBytecode string             `json:"deployedBytecode"`
	Candidates       []CandidateRequest `json:"candidates"`
}

// CandidateRequest is one compiler output candidate in a verify request.
// Output carries the raw solc standard JSON output.
type CandidateRequest struct {
	CompilerVersion string          `json:"compilerVersion"`
	Output          json.RawMessage `json:"output"`
}

// ToDomain converts VerifyRequest to domain.VerifyRequest, parsing each
// candidate's compiler output.
func (r VerifyRequest) ToDomain() (domain.VerifyRequest, error) {
	req := domain.VerifyRequest{
		ContractName:     r.ContractName,
		FilePath:         r.FilePath,
		CreationTxInput:  r.CreationTxInput,
		DeployedBytecode: r.DeployedBytecode,
	}
	for _, c := range r.Candidates {
		out, err := solc.ParseOutput(c.Output)
		if err != nil {
			return domain.VerifyRequest{}, err
		}
		req.Candidates = append(req.Candidates, domain.Candidate{
			CompilerVersion: c.CompilerVersion,
			Output:          out,
		})
	}
	return req, nil
}

// VerificationResponse is the response for getting a stored verification.
type VerificationResponse struct {
	ID               string `json:"id"`
	ContractName     string `json:"contractName"`
	FilePath         string `json:"filePath,omitempty"`
	CreationTxInput  string `json:"creationTxInput"`
	DeployedBytecode string `json:"deployedBytecode"`
	Status           string `json:"status"`
	CompilerVersion  string `json:"compilerVersion,omitempty"`
	ConstructorArgs  string `json:"constructorArgs,omitempty"`
	Message          string `json:"message,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

// ListResponse is the response for listing verifications.
type ListResponse struct {
	Data       []domain.Summary `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Pagination provides pagination metadata.
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
