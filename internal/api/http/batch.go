package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/observability"
	"github.com/tabshift/tabshift/internal/transform"
	"github.com/tabshift/tabshift/pkg/types"
)

// BatchHandler serves the batch transformation endpoint. Each item in
// the batch is executed independently; one failing item does not abort
// the others.
type BatchHandler struct {
	runner  *transform.Runner
	stats   *observability.UsageStats
	maxRows int
}

// NewBatchHandler creates a batch handler.
func NewBatchHandler(runner *transform.Runner, stats *observability.UsageStats, maxRows int) *BatchHandler {
	return &BatchHandler{
		runner:  runner,
		stats:   stats,
		maxRows: maxRows,
	}
}

// BatchRequest is the payload for POST /v1/transform/batch.
type BatchRequest struct {
	Transformations []types.TransformationRequest `json:"transformations"`
}

// BatchItemResponse is the per-item outcome within a batch response.
type BatchItemResponse struct {
	Index   int                         `json:"index"`
	Success bool                        `json:"success"`
	Result  *types.TransformationResult `json:"result,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

// BatchResponse is the envelope for a batch transformation.
type BatchResponse struct {
	Success   bool                `json:"success"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []BatchItemResponse `json:"results"`
	RequestID string              `json:"request_id,omitempty"`
}

// ServeHTTP handles POST /v1/transform/batch.
func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	if len(req.Transformations) == 0 {
		writeError(w, http.StatusBadRequest, "transformations list is empty", requestID)
		return
	}

	for i := range req.Transformations {
		if h.maxRows > 0 && len(req.Transformations[i].Data) > h.maxRows {
			err := errors.Validation(errors.CodeTooManyRows,
				"transformation %d exceeds maximum of %d rows", i, h.maxRows)
			writeError(w, http.StatusBadRequest, err.Error(), requestID)
			return
		}
	}

	items := h.runner.ExecuteBatch(r.Context(), req.Transformations)

	results := make([]BatchItemResponse, len(items))
	succeeded := 0
	for _, item := range items {
		entry := BatchItemResponse{Index: item.Index}
		if item.Err != nil {
			entry.Error = item.Err.Error()
		} else {
			entry.Success = true
			entry.Result = item.Result
			succeeded++
			if h.stats != nil {
				h.stats.RecordRequest(req.Transformations[item.Index], item.Result.ProcessingTimeMS)
			}
		}
		results[item.Index] = entry
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Success:   true,
		Total:     len(items),
		Succeeded: succeeded,
		Failed:    len(items) - succeeded,
		Results:   results,
		RequestID: requestID,
	})
}
