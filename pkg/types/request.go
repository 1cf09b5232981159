package types

import (
	"encoding/json"
	"fmt"
)

// TransformationType tags a transformation request.
type TransformationType string

const (
	TransformAggregate TransformationType = "aggregate"
	TransformFilter    TransformationType = "filter"
	TransformNormalize TransformationType = "normalize"
	TransformPivot     TransformationType = "pivot"
)

// TransformationTypes lists the known transformation tags.
func TransformationTypes() []TransformationType {
	return []TransformationType{TransformAggregate, TransformFilter, TransformNormalize, TransformPivot}
}

// ParseTransformationType validates a transformation type tag.
func ParseTransformationType(s string) (TransformationType, error) {
	switch TransformationType(s) {
	case TransformAggregate, TransformFilter, TransformNormalize, TransformPivot:
		return TransformationType(s), nil
	default:
		return "", fmt.Errorf("unknown transformation type: %q", s)
	}
}

// Operator is a condition comparison operator.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
)

// Operators lists the supported condition operators.
func Operators() []Operator {
	return []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn}
}

// Valid reports whether the operator is one of the supported tags.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn:
		return true
	}
	return false
}

// Condition is a single predicate evaluated against a record.
// Value is a scalar for most operators and a sequence for `in`.
type Condition struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

// ConditionList accepts either a single condition object or an array of
// conditions in JSON. Conditions are combined with AND semantics.
type ConditionList []Condition

// UnmarshalJSON decodes either one condition or a list of conditions.
func (c *ConditionList) UnmarshalJSON(b []byte) error {
	var list []Condition
	if err := json.Unmarshal(b, &list); err == nil {
		*c = list
		return nil
	}
	var single Condition
	if err := json.Unmarshal(b, &single); err != nil {
		return fmt.Errorf("conditions must be a condition object or an array of conditions: %w", err)
	}
	*c = ConditionList{single}
	return nil
}

// StatisticList accepts either a single statistic name or a list of
// names in JSON. A column with exactly one statistic keeps its own name
// in the output; a column with several gets column_statistic names.
type StatisticList []string

// UnmarshalJSON decodes either one statistic name or a list of names.
func (s *StatisticList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err != nil {
		return fmt.Errorf("aggregation must be a statistic name or an array of names: %w", err)
	}
	*s = StatisticList{single}
	return nil
}

// MarshalJSON emits a bare string for single-statistic lists.
func (s StatisticList) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// Parameters is the tagged union of per-type transformation parameters.
// The concrete variant is selected by the request's transformation_type,
// making invalid combinations unrepresentable at the boundary.
type Parameters interface {
	isParameters()
}

// AggregateParams configures an aggregate transformation.
type AggregateParams struct {
	GroupBy      []string                 `json:"group_by"`
	Aggregations map[string]StatisticList `json:"aggregations,omitempty"`
}

// FilterParams configures a filter transformation.
type FilterParams struct {
	Conditions ConditionList `json:"conditions"`
}

// NormalizeParams configures a normalize transformation. An empty Method
// defaults to min_max at dispatch.
type NormalizeParams struct {
	Columns []string `json:"columns"`
	Method  string   `json:"method,omitempty"`
}

// PivotParams configures a pivot transformation. An empty AggFunc
// defaults to sum at dispatch.
type PivotParams struct {
	Index        string `json:"index"`
	PivotColumns string `json:"pivot_columns"`
	Values       string `json:"values"`
	AggFunc      string `json:"aggfunc,omitempty"`
}

func (*AggregateParams) isParameters() {}
func (*FilterParams) isParameters()    {}
func (*NormalizeParams) isParameters() {}
func (*PivotParams) isParameters()     {}

// DecodeParameters decodes the raw parameters object into the variant
// matching the transformation type. A nil or empty raw message yields the
// zero-value variant so the dispatcher can report precise missing-key
// errors.
func DecodeParameters(t TransformationType, raw json.RawMessage) (Parameters, error) {
	var params Parameters
	switch t {
	case TransformAggregate:
		params = &AggregateParams{}
	case TransformFilter:
		params = &FilterParams{}
	case TransformNormalize:
		params = &NormalizeParams{}
	case TransformPivot:
		params = &PivotParams{}
	default:
		return nil, fmt.Errorf("unknown transformation type: %q", t)
	}
	if len(raw) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", t, err)
	}
	return params, nil
}

// TransformationRequest is a single transformation over an in-memory table.
type TransformationRequest struct {
	Data   Table
	Type   TransformationType
	Params Parameters
}

type rawRequest struct {
	Data       Table           `json:"data"`
	Type       string          `json:"transformation_type"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// UnmarshalJSON decodes the request and its type-specific parameters.
func (r *TransformationRequest) UnmarshalJSON(b []byte) error {
	var raw rawRequest
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t, err := ParseTransformationType(raw.Type)
	if err != nil {
		return err
	}

	params, err := DecodeParameters(t, raw.Parameters)
	if err != nil {
		return err
	}

	r.Data = raw.Data
	r.Type = t
	r.Params = params
	return nil
}

// MarshalJSON encodes the request in the wire shape accepted by UnmarshalJSON.
func (r TransformationRequest) MarshalJSON() ([]byte, error) {
	var rawParams json.RawMessage
	if r.Params != nil {
		b, err := json.Marshal(r.Params)
		if err != nil {
			return nil, err
		}
		rawParams = b
	}
	return json.Marshal(rawRequest{
		Data:       r.Data,
		Type:       string(r.Type),
		Parameters: rawParams,
	})
}

// PipelineStep is one stage of a chained transformation pipeline: the
// output table of each step feeds the next step's input.
type PipelineStep struct {
	Type   TransformationType
	Params Parameters
}

type rawStep struct {
	Type       string          `json:"transformation_type"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// UnmarshalJSON decodes the step and its type-specific parameters.
func (s *PipelineStep) UnmarshalJSON(b []byte) error {
	var raw rawStep
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t, err := ParseTransformationType(raw.Type)
	if err != nil {
		return err
	}

	params, err := DecodeParameters(t, raw.Parameters)
	if err != nil {
		return err
	}

	s.Type = t
	s.Params = params
	return nil
}

// MarshalJSON encodes the step in the wire shape accepted by UnmarshalJSON.
func (s PipelineStep) MarshalJSON() ([]byte, error) {
	var rawParams json.RawMessage
	if s.Params != nil {
		b, err := json.Marshal(s.Params)
		if err != nil {
			return nil, err
		}
		rawParams = b
	}
	return json.Marshal(rawStep{
		Type:       string(s.Type),
		Parameters: rawParams,
	})
}

// Metadata carries descriptive counters about a transformation.
type Metadata map[string]interface{}

// TransformationResult is the engine's result envelope: the transformed
// table, the output column order, descriptive metadata, and the wall-clock
// time spent strictly inside the component call.
type TransformationResult struct {
	Data             Table    `json:"data"`
	Columns          []string `json:"columns"`
	Metadata         Metadata `json:"metadata"`
	ProcessingTimeMS float64  `json:"processing_time_ms"`
}
