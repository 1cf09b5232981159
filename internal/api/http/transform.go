package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/observability"
	"github.com/tabshift/tabshift/internal/transform"
	"github.com/tabshift/tabshift/pkg/types"
)

// TransformHandler serves the single-transformation endpoint.
type TransformHandler struct {
	stats   *observability.UsageStats
	maxRows int
}

// NewTransformHandler creates a transform handler.
func NewTransformHandler(stats *observability.UsageStats, maxRows int) *TransformHandler {
	return &TransformHandler{stats: stats, maxRows: maxRows}
}

// TransformResponse is the envelope for a successful transformation.
type TransformResponse struct {
	Success   bool                        `json:"success"`
	Message   string                      `json:"message"`
	Result    *types.TransformationResult `json:"result"`
	RequestID string                      `json:"request_id,omitempty"`
}

// ServeHTTP handles POST /v1/transform.
func (h *TransformHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req types.TransformationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	if h.maxRows > 0 && len(req.Data) > h.maxRows {
		err := errors.Validation(errors.CodeTooManyRows,
			"dataset exceeds maximum of %d rows", h.maxRows)
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	result, err := transform.Execute(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsValidation(err) {
			status = http.StatusBadRequest
		}
		log.Printf("transform failed request_id=%s type=%s: %v", requestID, req.Type, err)
		writeError(w, status, err.Error(), requestID)
		return
	}

	if h.stats != nil {
		h.stats.RecordRequest(req, result.ProcessingTimeMS)
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		Success:   true,
		Message:   fmt.Sprintf("%s transformation completed", req.Type),
		Result:    result,
		RequestID: requestID,
	})
}
