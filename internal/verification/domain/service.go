package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pendergraft/solverify/internal/bytecode"
	"github.com/pendergraft/solverify/internal/config"
	"github.com/pendergraft/solverify/internal/solc"
	"github.com/pendergraft/solverify/internal/storage"
	"github.com/pendergraft/solverify/internal/validation"
	"github.com/pendergraft/solverify/internal/verifier"
)

// Common errors returned by the verification service.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoCandidates      = errors.New("no compiler output candidates supplied")
	ErrTooManyCandidates = errors.New("too many compiler output candidates")
	ErrContractNotFound  = errors.New("contract not found in any compiler output")
)

// Service is the verification domain API consumed by transports.
type Service interface {
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	Get(ctx context.Context, id string) (*storage.Verification, error)
	List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error)
}

// Store defines the storage operations needed by the verification domain.
type Store interface {
	CreateVerification(ctx context.Context, v *storage.Verification) error
	GetVerification(ctx context.Context, id string) (*storage.Verification, error)
	ListVerifications(ctx context.Context, filter storage.VerificationFilter, pagination storage.PaginationParams) (*storage.PaginatedResult[storage.Verification], error)
}

type service struct {
	store Store
	cfg   config.VerificationConfig
}

// NewService creates a new verification service.
func NewService(store Store, cfg config.VerificationConfig) *service {
	return &service{store: store, cfg: cfg}
}

// Verify parses the request inputs once, compares them against each candidate
// compiler output newest-first, records the outcome, and returns it. A "none"
// result is a completed verification that concluded "not verified".
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	v, err := verifier.New(req.ContractName, req.FilePath, req.CreationTxInput, req.DeployedBytecode)
	if err != nil {
		// Initialization failures are client-input errors; the parse error
		// already carries the offending string.
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	candidates := append([]Candidate(nil), req.Candidates...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return solc.Version(candidates[i].CompilerVersion).Compare(solc.Version(candidates[j].CompilerVersion)) > 0
	})

	result, err := s.runCandidates(v, candidates)
	if err != nil {
		return nil, err
	}
	result.ConstructorArgs = encodeArgs(v.ConstructorArgs())

	record := &storage.Verification{
		ContractName:     req.ContractName,
		FilePath:         req.FilePath,
		CreationTxInput:  req.CreationTxInput,
		DeployedBytecode: req.DeployedBytecode,
		Status:           result.Status,
		CompilerVersion:  result.CompilerVersion,
		ConstructorArgs:  result.ConstructorArgs,
		Message:          result.Message,
	}
	if err := s.store.CreateVerification(ctx, record); err != nil {
		return nil, fmt.Errorf("recording verification: %w", err)
	}
	result.ID = record.ID

	return result, nil
}

// runCandidates tries each candidate in order, stopping at the first full
// match and otherwise keeping the best outcome seen (partial beats none).
// When the contract is absent from every candidate output the verification
// could not be performed at all, which is an error rather than an outcome.
func (s *service) runCandidates(v *verifier.Verifier, candidates []Candidate) (*VerifyResult, error) {
	result := &VerifyResult{Status: "failed", Message: "no candidate produced a comparable output"}
	notFoundEverywhere := true

	for _, cand := range candidates {
		outcome, err := v.Verify(cand.Output)
		if err != nil {
			if !errors.Is(err, verifier.ErrContractNotFound) {
				notFoundEverywhere = false
			}
			result.Attempts = append(result.Attempts, Attempt{
				CompilerVersion: cand.CompilerVersion,
				Status:          "error",
				Message:         err.Error(),
			})
			continue
		}
		notFoundEverywhere = false
		result.Attempts = append(result.Attempts, Attempt{
			CompilerVersion: cand.CompilerVersion,
			Status:          string(outcome.Match),
		})

		if !better(outcome.Match, result.Status) {
			continue
		}
		result.Status = string(outcome.Match)
		result.CompilerVersion = cand.CompilerVersion
		result.Message = messageFor(outcome.Match)
		result.RuntimeDiff = diffOf(outcome.RuntimeMismatch)
		result.CreationDiff = diffOf(outcome.CreationMismatch)

		if outcome.Match == verifier.MatchFull {
			break
		}
	}

	if result.Status == "failed" && notFoundEverywhere {
		return nil, ErrContractNotFound
	}
	return result, nil
}

// Get returns a stored verification record.
func (s *service) Get(ctx context.Context, id string) (*storage.Verification, error) {
	rec, err := s.store.GetVerification(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting verification: %w", err)
	}
	return rec, nil
}

// List returns a page of verification summaries.
func (s *service) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	if pagination.Limit <= 0 || pagination.Limit > 100 {
		pagination.Limit = 50
	}
	page, err := s.store.ListVerifications(ctx,
		storage.VerificationFilter{ContractName: filter.ContractName, Status: filter.Status},
		storage.PaginationParams{Limit: pagination.Limit, Cursor: pagination.Cursor},
	)
	if err != nil {
		return nil, fmt.Errorf("listing verifications: %w", err)
	}

	result := &ListResult{HasMore: page.HasMore, NextCursor: page.NextCursor}
	for _, rec := range page.Data {
		result.Data = append(result.Data, Summary{
			ID:              rec.ID,
			ContractName:    rec.ContractName,
			Status:          rec.Status,
			CompilerVersion: rec.CompilerVersion,
			CreatedAt:       rec.CreatedAt,
		})
	}
	return result, nil
}

func (s *service) validate(req VerifyRequest) error {
	if err := validation.ValidateContractName(req.ContractName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateFilePath(req.FilePath); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateBytecodeSize(req.CreationTxInput, s.cfg.MaxBytecodeSizeKB); err != nil {
		return fmt.Errorf("%w: creation tx input: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidateBytecodeSize(req.DeployedBytecode, s.cfg.MaxBytecodeSizeKB); err != nil {
		return fmt.Errorf("%w: deployed bytecode: %v", ErrInvalidInput, err)
	}
	if len(req.Candidates) == 0 {
		return ErrNoCandidates
	}
	if s.cfg.MaxCandidates > 0 && len(req.Candidates) > s.cfg.MaxCandidates {
		return fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(req.Candidates), s.cfg.MaxCandidates)
	}
	for _, cand := range req.Candidates {
		if _, err := solc.ParseVersion(cand.CompilerVersion); err != nil {
			return fmt.Errorf("%w: compiler version %q", ErrInvalidInput, cand.CompilerVersion)
		}
		if cand.Output == nil {
			return fmt.Errorf("%w: candidate %s has no compiler output", ErrInvalidInput, cand.CompilerVersion)
		}
	}
	return nil
}

// better reports whether a new match outcome improves on the current status.
func better(match verifier.MatchType, current string) bool {
	rank := map[string]int{"failed": 0, "none": 1, "partial": 2, "full": 3}
	return rank[string(match)] > rank[current]
}

func messageFor(match verifier.MatchType) string {
	switch match {
	case verifier.MatchFull:
		return "bytecode matches exactly including metadata"
	case verifier.MatchPartial:
		return "code matches, metadata differs (different build environment or source paths)"
	default:
		return "bytecode does not match"
	}
}

func diffOf(m *bytecode.Mismatch[bytecode.Bytes]) *Diff {
	if m == nil {
		return nil
	}
	d := &Diff{}
	if m.Expected != nil {
		d.Expected = m.Expected.String()
	}
	if m.Found != nil {
		d.Found = m.Found.String()
	}
	return d
}

func encodeArgs(args bytecode.Bytes) string {
	if len(args) == 0 {
		return ""
	}
	return args.String()
}
