package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/pendergraft/solverify/internal/auth"
	"github.com/pendergraft/solverify/internal/observability/metrics"
	"github.com/pendergraft/solverify/internal/storage"
)

// LoggingMiddleware returns a service middleware that logs all operations.
func LoggingMiddleware(logger *slog.Logger) func(Service) Service {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger *slog.Logger
}

func (m *loggingMiddleware) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	start := time.Now()
	result, err := m.next.Verify(ctx, req)
	status := ""
	if result != nil {
		status = result.Status
	}
	m.logger.Info("Verify",
		"contract", req.ContractName,
		"candidates", len(req.Candidates),
		"status", status,
		"submitted_by", auth.GetKeyNameFromContext(ctx),
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}

func (m *loggingMiddleware) Get(ctx context.Context, id string) (*storage.Verification, error) {
	start := time.Now()
	rec, err := m.next.Get(ctx, id)
	m.logger.Debug("Get",
		"id", id,
		"duration", time.Since(start),
		"error", err,
	)
	return rec, err
}

func (m *loggingMiddleware) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	start := time.Now()
	result, err := m.next.List(ctx, filter, pagination)
	m.logger.Debug("List",
		"contract", filter.ContractName,
		"status", filter.Status,
		"limit", pagination.Limit,
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}

// MetricsMiddleware returns a service middleware that records verification
// outcome metrics.
func MetricsMiddleware() func(Service) Service {
	return func(next Service) Service {
		return &metricsMiddleware{next: next}
	}
}

type metricsMiddleware struct {
	next Service
}

func (m *metricsMiddleware) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	start := time.Now()
	result, err := m.next.Verify(ctx, req)
	outcome := "error"
	if err == nil && result != nil {
		outcome = result.Status
	}
	metrics.VerificationRequest(outcome, len(req.Candidates), time.Since(start))
	return result, err
}

func (m *metricsMiddleware) Get(ctx context.Context, id string) (*storage.Verification, error) {
	return m.next.Get(ctx, id)
}

func (m *metricsMiddleware) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	return m.next.List(ctx, filter, pagination)
}
