// Package transport provides HTTP handlers for the verification domain.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pendergraft/solverify/internal/verification/domain"
)

// Handler handles HTTP requests for verifications.
type Handler struct {
	svc domain.Service
}

// NewHandler creates a new verification HTTP handler.
func NewHandler(svc domain.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterReadRoutes registers read-only verification routes (no auth required).
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/verifications", h.handleList)
	r.Get("/verifications/{id}", h.handleGet)
}

// RegisterWriteRoutes registers write verification routes (auth required).
func (h *Handler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/verify", h.handleVerify)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	// Compiler outputs for large contracts run to megabytes.
	r.Body = http.MaxBytesReader(w, r.Body, 50*1024*1024)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return
	}

	var req VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	domainReq, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_COMPILER_OUTPUT", err.Error())
		return
	}

	result, err := h.svc.Verify(r.Context(), domainReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		case errors.Is(err, domain.ErrNoCandidates):
			writeError(w, http.StatusBadRequest, "NO_CANDIDATES", err.Error())
		case errors.Is(err, domain.ErrTooManyCandidates):
			writeError(w, http.StatusBadRequest, "TOO_MANY_CANDIDATES", err.Error())
		case errors.Is(err, domain.ErrContractNotFound):
			writeError(w, http.StatusUnprocessableEntity, "CONTRACT_NOT_FOUND", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to run verification")
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Verification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get verification")
		return
	}

	writeJSON(w, http.StatusOK, VerificationResponse{
		ID:               rec.ID,
		ContractName:     rec.ContractName,
		FilePath:         rec.FilePath,
		CreationTxInput:  rec.CreationTxInput,
		DeployedBytecode: rec.DeployedBytecode,
		Status:           rec.Status,
		CompilerVersion:  rec.CompilerVersion,
		ConstructorArgs:  rec.ConstructorArgs,
		Message:          rec.Message,
		CreatedAt:        rec.CreatedAt,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	result, err := h.svc.List(r.Context(), domain.ListFilter{
		ContractName: r.URL.Query().Get("contract"),
		Status:       r.URL.Query().Get("status"),
	}, domain.PaginationParams{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list verifications")
		return
	}

	data := result.Data
	if data == nil {
		data = []domain.Summary{}
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Data: data,
		Pagination: Pagination{
			Limit:      limit,
			HasMore:    result.HasMore,
			NextCursor: result.NextCursor,
		},
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
