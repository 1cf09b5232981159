package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/transform"
	"github.com/tabshift/tabshift/pkg/types"
)

// PipelineHandler serves the chained transformation endpoint. Steps run
// in order against the output of the previous step; the first failing
// step aborts the pipeline.
type PipelineHandler struct {
	maxRows int
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(maxRows int) *PipelineHandler {
	return &PipelineHandler{maxRows: maxRows}
}

// PipelineRequest is the payload for POST /v1/pipeline.
type PipelineRequest struct {
	Data  types.Table          `json:"data"`
	Steps []types.PipelineStep `json:"steps"`
}

// PipelineResponse is the envelope for a pipeline run.
type PipelineResponse struct {
	Success   bool                   `json:"success"`
	Data      types.Table            `json:"data"`
	Columns   []string               `json:"columns"`
	Steps     []transform.StepResult `json:"steps"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ServeHTTP handles POST /v1/pipeline.
func (h *PipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	if len(req.Steps) == 0 {
		writeError(w, http.StatusBadRequest, "steps list is empty", requestID)
		return
	}
	if h.maxRows > 0 && len(req.Data) > h.maxRows {
		err := errors.Validation(errors.CodeTooManyRows,
			"dataset exceeds maximum of %d rows", h.maxRows)
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	data, columns, steps, err := transform.ExecutePipeline(req.Data, req.Steps)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsValidation(err) {
			status = http.StatusBadRequest
		}
		log.Printf("pipeline failed request_id=%s: %v", requestID, err)
		writeError(w, status, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, PipelineResponse{
		Success:   true,
		Data:      data,
		Columns:   columns,
		Steps:     steps,
		RequestID: requestID,
	})
}
