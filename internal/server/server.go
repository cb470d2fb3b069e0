// Package server exposes the docstring pipeline over HTTP: a single
// POST /generate endpoint taking raw source and returning the rewritten
// text.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/docsmith/docsmith/internal/orchestrator"
	"github.com/docsmith/docsmith/internal/types"
)

// ProcessFunc runs the pipeline on one source text.
type ProcessFunc func(ctx context.Context, source string, style types.Style, overwrite bool) (*orchestrator.FileResult, error)

// GenerateRequest is the POST /generate body.
type GenerateRequest struct {
	Code      string `json:"code"`
	Style     string `json:"style,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`
}

// GenerateResponse is the POST /generate reply.
type GenerateResponse struct {
	Success bool                 `json:"success"`
	Code    string               `json:"code,omitempty"`
	Error   string               `json:"error,omitempty"`
	Results []*types.DraftResult `json:"results,omitempty"`
	Skipped []string             `json:"skipped,omitempty"`
}

// maxRequestBody bounds request size to keep a hostile payload from
// exhausting memory.
const maxRequestBody = 4 << 20

// NewHandler builds the HTTP mux around process.
func NewHandler(process ProcessFunc) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		handleGenerate(w, r, process)
	})
	return mux
}

func handleGenerate(w http.ResponseWriter, r *http.Request, process ProcessFunc) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, GenerateResponse{Error: "method not allowed"})
		return
	}

	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Error: "code is required"})
		return
	}

	style := types.StyleGoogle
	if req.Style != "" {
		parsed, err := types.ParseStyle(req.Style)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, GenerateResponse{Error: err.Error()})
			return
		}
		style = parsed
	}

	result, err := process(r.Context(), req.Code, style, req.Overwrite)
	if err != nil {
		// A parse failure is the caller's problem; anything else is ours.
		status := http.StatusUnprocessableEntity
		if r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, GenerateResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success: true,
		Code:    result.Source,
		Results: result.Results,
		Skipped: result.Skipped,
	})
}

func writeJSON(w http.ResponseWriter, status int, body GenerateResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}
