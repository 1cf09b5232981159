// Package transform dispatches validated transformation requests to the
// aggregate, filter, normalize, and pivot components and assembles the
// result envelope. The engine is a pure, synchronous computation over its
// input: it holds no state between calls and is safe to invoke
// concurrently.
package transform

import (
	"time"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/transform/aggregator"
	"github.com/tabshift/tabshift/internal/transform/normalizer"
	"github.com/tabshift/tabshift/internal/transform/pivoter"
	"github.com/tabshift/tabshift/internal/transform/predicate"
	"github.com/tabshift/tabshift/internal/transform/reduce"
	"github.com/tabshift/tabshift/internal/transform/schema"
	"github.com/tabshift/tabshift/pkg/types"
)

// Execute validates a transformation request, routes it to the matching
// component, and wraps the component's output with row-count metadata
// and wall-clock timing measured strictly around the component call.
// Component errors propagate to the caller untouched; no partial table
// is ever returned.
func Execute(req types.TransformationRequest) (*types.TransformationResult, error) {
	switch req.Type {
	case types.TransformAggregate, types.TransformFilter, types.TransformNormalize, types.TransformPivot:
	default:
		return nil, errors.Validation(errors.CodeUnknownTransformation,
			"unknown transformation type: %q", req.Type)
	}

	switch req.Type {
	case types.TransformAggregate:
		params, ok := req.Params.(*types.AggregateParams)
		if !ok {
			return nil, mismatch(req.Type)
		}
		return executeAggregate(req.Data, params)

	case types.TransformFilter:
		params, ok := req.Params.(*types.FilterParams)
		if !ok {
			return nil, mismatch(req.Type)
		}
		return executeFilter(req.Data, params)

	case types.TransformNormalize:
		params, ok := req.Params.(*types.NormalizeParams)
		if !ok {
			return nil, mismatch(req.Type)
		}
		return executeNormalize(req.Data, params)

	default:
		params, ok := req.Params.(*types.PivotParams)
		if !ok {
			return nil, mismatch(req.Type)
		}
		return executePivot(req.Data, params)
	}
}

func mismatch(t types.TransformationType) error {
	return errors.Validation(errors.CodeParameterMismatch,
		"parameters do not match transformation type %q", t)
}

func executeAggregate(data types.Table, params *types.AggregateParams) (*types.TransformationResult, error) {
	if len(params.GroupBy) == 0 {
		return nil, errors.Validation(errors.CodeEmptyGroupBy, "group_by must not be empty")
	}

	aggregated := make([]string, 0, len(params.Aggregations))
	sch := schema.Infer(data)
	for _, col := range sch.Columns {
		if _, ok := params.Aggregations[col]; ok {
			aggregated = append(aggregated, col)
		}
	}

	// An empty table yields an empty result with zeroed metadata rather
	// than failing column validation against a schema that does not exist.
	if len(data) == 0 {
		return emptyResult(types.Metadata{
			"group_by_columns":   params.GroupBy,
			"aggregated_columns": []string{},
			"groups_created":     0,
		}), nil
	}

	start := time.Now()
	out, err := aggregator.Aggregate(data, params.GroupBy, params.Aggregations)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &types.TransformationResult{
		Data:    out.Data,
		Columns: out.Columns,
		Metadata: types.Metadata{
			"original_rows":      len(data),
			"transformed_rows":   len(out.Data),
			"groups_created":     out.Groups,
			"group_by_columns":   params.GroupBy,
			"aggregated_columns": aggregated,
		},
		ProcessingTimeMS: toMillis(elapsed),
	}, nil
}

func executeFilter(data types.Table, params *types.FilterParams) (*types.TransformationResult, error) {
	if len(params.Conditions) == 0 {
		return nil, errors.Validation(errors.CodeMissingParameter,
			"filter transformation requires at least one condition")
	}

	if len(data) == 0 {
		return emptyResult(types.Metadata{
			"filtered_rows":      0,
			"conditions_applied": len(params.Conditions),
			"filter_ratio":       0.0,
		}), nil
	}

	start := time.Now()
	filtered, err := predicate.Filter(data, params.Conditions)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &types.TransformationResult{
		Data:    filtered,
		Columns: schema.Infer(data).Columns,
		Metadata: types.Metadata{
			"original_rows":      len(data),
			"transformed_rows":   len(filtered),
			"filtered_rows":      len(filtered),
			"conditions_applied": len(params.Conditions),
			"filter_ratio":       float64(len(filtered)) / float64(len(data)),
		},
		ProcessingTimeMS: toMillis(elapsed),
	}, nil
}

func executeNormalize(data types.Table, params *types.NormalizeParams) (*types.TransformationResult, error) {
	if len(params.Columns) == 0 {
		return nil, errors.Validation(errors.CodeMissingParameter,
			"normalize transformation requires at least one column")
	}

	methodName := params.Method
	if methodName == "" {
		methodName = string(normalizer.MethodMinMax)
	}
	method, err := normalizer.ParseMethod(methodName)
	if err != nil {
		return nil, errors.Validation(errors.CodeUnknownMethod,
			"unknown normalization method: %q", methodName)
	}

	if len(data) == 0 {
		return emptyResult(types.Metadata{
			"columns_normalized":   []string{},
			"normalization_method": string(method),
			"statistics":           map[string]normalizer.ColumnStats{},
		}), nil
	}

	start := time.Now()
	out, err := normalizer.Normalize(data, params.Columns, method)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &types.TransformationResult{
		Data:    out.Data,
		Columns: out.Columns,
		Metadata: types.Metadata{
			"original_rows":        len(data),
			"transformed_rows":     len(out.Data),
			"columns_normalized":   params.Columns,
			"normalization_method": string(method),
			"statistics":           out.Stats,
		},
		ProcessingTimeMS: toMillis(elapsed),
	}, nil
}

func executePivot(data types.Table, params *types.PivotParams) (*types.TransformationResult, error) {
	if params.Index == "" || params.PivotColumns == "" || params.Values == "" {
		return nil, errors.Validation(errors.CodeMissingParameter,
			"pivot transformation requires index, pivot_columns, and values parameters")
	}

	aggName := params.AggFunc
	if aggName == "" {
		aggName = string(reduce.StatSum)
	}
	aggfunc, err := reduce.ParseStatistic(aggName)
	if err != nil {
		return nil, errors.Validation(errors.CodeUnknownStatistic,
			"unknown aggregation function: %q", aggName)
	}

	if len(data) == 0 {
		return emptyResult(types.Metadata{
			"pivoted_rows":         0,
			"index_column":         params.Index,
			"pivot_columns":        params.PivotColumns,
			"values_column":        params.Values,
			"aggregation_function": string(aggfunc),
		}), nil
	}

	start := time.Now()
	out, err := pivoter.Pivot(data, params.Index, params.PivotColumns, params.Values, aggfunc)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &types.TransformationResult{
		Data:    out.Data,
		Columns: out.Columns,
		Metadata: types.Metadata{
			"original_rows":        len(data),
			"transformed_rows":     len(out.Data),
			"pivoted_rows":         len(out.Data),
			"index_column":         params.Index,
			"pivot_columns":        params.PivotColumns,
			"values_column":        params.Values,
			"aggregation_function": string(aggfunc),
		},
		ProcessingTimeMS: toMillis(elapsed),
	}, nil
}

// emptyResult builds the zeroed envelope returned for an empty input
// table. Type-specific metadata is merged over the shared counters.
func emptyResult(extra types.Metadata) *types.TransformationResult {
	md := types.Metadata{
		"original_rows":    0,
		"transformed_rows": 0,
	}
	for k, v := range extra {
		md[k] = v
	}
	return &types.TransformationResult{
		Data:     types.Table{},
		Columns:  []string{},
		Metadata: md,
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
