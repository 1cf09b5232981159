package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformationRequest_UnmarshalAggregate(t *testing.T) {
	body := `{
		"data": [{"region": "North", "sales": 100}],
		"transformation_type": "aggregate",
		"parameters": {"group_by": ["region"], "aggregations": {"sales": "sum"}}
	}`

	var req TransformationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, TransformAggregate, req.Type)
	assert.Len(t, req.Data, 1)

	params, ok := req.Params.(*AggregateParams)
	require.True(t, ok)
	assert.Equal(t, []string{"region"}, params.GroupBy)
	assert.Equal(t, StatisticList{"sum"}, params.Aggregations["sales"])
}

func TestTransformationRequest_UnmarshalAggregationList(t *testing.T) {
	body := `{
		"data": [],
		"transformation_type": "aggregate",
		"parameters": {"group_by": ["region"], "aggregations": {"sales": ["sum", "mean"]}}
	}`

	var req TransformationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	params := req.Params.(*AggregateParams)
	assert.Equal(t, StatisticList{"sum", "mean"}, params.Aggregations["sales"])
}

func TestTransformationRequest_UnmarshalFilterSingleCondition(t *testing.T) {
	// A bare condition object is accepted in place of a one-element array.
	body := `{
		"data": [],
		"transformation_type": "filter",
		"parameters": {"conditions": {"field": "age", "operator": "gte", "value": 30}}
	}`

	var req TransformationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	params, ok := req.Params.(*FilterParams)
	require.True(t, ok)
	require.Len(t, params.Conditions, 1)
	assert.Equal(t, "age", params.Conditions[0].Field)
	assert.Equal(t, OpGte, params.Conditions[0].Operator)
	assert.Equal(t, 30.0, params.Conditions[0].Value)
}

func TestTransformationRequest_UnmarshalUnknownType(t *testing.T) {
	body := `{"data": [], "transformation_type": "explode", "parameters": {}}`

	var req TransformationRequest
	err := json.Unmarshal([]byte(body), &req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "explode")
}

func TestTransformationRequest_UnmarshalMissingParameters(t *testing.T) {
	// Absent parameters decode to the zero-value variant so the
	// dispatcher can report the precise missing key.
	body := `{"data": [], "transformation_type": "normalize"}`

	var req TransformationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	params, ok := req.Params.(*NormalizeParams)
	require.True(t, ok)
	assert.Empty(t, params.Columns)
}

func TestTransformationRequest_MarshalRoundtrip(t *testing.T) {
	req := TransformationRequest{
		Data: Table{{"city": "Oslo", "temp": 12.5}},
		Type: TransformNormalize,
		Params: &NormalizeParams{
			Columns: []string{"temp"},
			Method:  "z_score",
		},
	}

	b, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded TransformationRequest
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Equal(t, req.Type, decoded.Type)
	assert.Equal(t, req.Params, decoded.Params)
	assert.Equal(t, "Oslo", decoded.Data[0]["city"])
}

func TestPipelineStep_Unmarshal(t *testing.T) {
	body := `{
		"transformation_type": "pivot",
		"parameters": {"index": "region", "pivot_columns": "product", "values": "sales", "aggfunc": "mean"}
	}`

	var step PipelineStep
	require.NoError(t, json.Unmarshal([]byte(body), &step))

	params, ok := step.Params.(*PivotParams)
	require.True(t, ok)
	assert.Equal(t, "region", params.Index)
	assert.Equal(t, "mean", params.AggFunc)
}

func TestStatisticList_MarshalSingleAsString(t *testing.T) {
	b, err := json.Marshal(StatisticList{"sum"})
	require.NoError(t, err)
	assert.Equal(t, `"sum"`, string(b))

	b, err = json.Marshal(StatisticList{"sum", "mean"})
	require.NoError(t, err)
	assert.Equal(t, `["sum","mean"]`, string(b))
}

func TestOperatorValid(t *testing.T) {
	for _, op := range Operators() {
		assert.True(t, op.Valid(), string(op))
	}
	assert.False(t, Operator("like").Valid())
}
