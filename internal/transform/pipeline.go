package transform

import (
	"fmt"

	"github.com/tabshift/tabshift/pkg/types"
)

// StepResult summarizes one completed pipeline step.
type StepResult struct {
	Step             int                      `json:"step"`
	Type             types.TransformationType `json:"transformation_type"`
	Metadata         types.Metadata           `json:"metadata"`
	ProcessingTimeMS float64                  `json:"processing_time_ms"`
}

// ExecutePipeline chains transformation steps over one dataset: each
// step's output table feeds the next step's input. Unlike batch
// execution, steps are dependent, so the pipeline aborts on the first
// failing step; the returned error names the 1-based step index and the
// step results cover the completed prefix.
func ExecutePipeline(data types.Table, steps []types.PipelineStep) (types.Table, []string, []StepResult, error) {
	current := data
	var columns []string
	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		res, err := Execute(types.TransformationRequest{
			Data:   current,
			Type:   step.Type,
			Params: step.Params,
		})
		if err != nil {
			return nil, nil, results, fmt.Errorf("pipeline step %d (%s): %w", i+1, step.Type, err)
		}

		current = res.Data
		columns = res.Columns
		results = append(results, StepResult{
			Step:             i + 1,
			Type:             step.Type,
			Metadata:         res.Metadata,
			ProcessingTimeMS: res.ProcessingTimeMS,
		})
	}

	return current, columns, results, nil
}
