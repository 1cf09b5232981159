package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/pkg/types"
)

func aggregateRequest(data types.Table) types.TransformationRequest {
	return types.TransformationRequest{
		Data: data,
		Type: types.TransformAggregate,
		Params: &types.AggregateParams{
			GroupBy:      []string{"region"},
			Aggregations: map[string]types.StatisticList{"sales": {"sum"}},
		},
	}
}

func TestExecute_Aggregate(t *testing.T) {
	res, err := Execute(aggregateRequest(types.Table{
		{"region": "North", "sales": 100.0},
		{"region": "North", "sales": 150.0},
		{"region": "South", "sales": 200.0},
		{"region": "South", "sales": 120.0},
	}))
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, 250.0, res.Data[0]["sales"])
	assert.Equal(t, 320.0, res.Data[1]["sales"])

	assert.Equal(t, 4, res.Metadata["original_rows"])
	assert.Equal(t, 2, res.Metadata["transformed_rows"])
	assert.Equal(t, 2, res.Metadata["groups_created"])
	assert.Equal(t, []string{"region"}, res.Metadata["group_by_columns"])
	assert.GreaterOrEqual(t, res.ProcessingTimeMS, 0.0)
}

func TestExecute_UnknownType(t *testing.T) {
	_, err := Execute(types.TransformationRequest{
		Type: types.TransformationType("explode"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestExecute_ParameterMismatch(t *testing.T) {
	_, err := Execute(types.TransformationRequest{
		Type:   types.TransformAggregate,
		Params: &types.FilterParams{},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParameterMismatch))
}

func TestExecute_AggregateEmptyGroupBy(t *testing.T) {
	_, err := Execute(types.TransformationRequest{
		Data:   types.Table{{"a": 1.0}},
		Type:   types.TransformAggregate,
		Params: &types.AggregateParams{},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeEmptyGroupBy))
}

func TestExecute_EmptyDataSucceedsWithZeroedMetadata(t *testing.T) {
	res, err := Execute(aggregateRequest(types.Table{}))
	require.NoError(t, err)

	assert.Empty(t, res.Data)
	assert.Empty(t, res.Columns)
	assert.Equal(t, 0, res.Metadata["original_rows"])
	assert.Equal(t, 0, res.Metadata["transformed_rows"])
	assert.Equal(t, 0, res.Metadata["groups_created"])
}

func TestExecute_Filter(t *testing.T) {
	res, err := Execute(types.TransformationRequest{
		Data: types.Table{
			{"name": "alice", "age": 30.0},
			{"name": "bob", "age": 25.0},
			{"name": "carol", "age": 35.0},
		},
		Type: types.TransformFilter,
		Params: &types.FilterParams{
			Conditions: types.ConditionList{
				{Field: "age", Operator: types.OpGte, Value: 30.0},
			},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, "alice", res.Data[0]["name"])
	assert.Equal(t, "carol", res.Data[1]["name"])

	assert.Equal(t, 2, res.Metadata["filtered_rows"])
	assert.Equal(t, 1, res.Metadata["conditions_applied"])
	assert.InDelta(t, 2.0/3.0, res.Metadata["filter_ratio"].(float64), 1e-12)
}

func TestExecute_FilterRequiresConditions(t *testing.T) {
	_, err := Execute(types.TransformationRequest{
		Data:   types.Table{{"a": 1.0}},
		Type:   types.TransformFilter,
		Params: &types.FilterParams{},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMissingParameter))
}

func TestExecute_NormalizeDefaultsToMinMax(t *testing.T) {
	res, err := Execute(types.TransformationRequest{
		Data: types.Table{{"v": 10.0}, {"v": 20.0}, {"v": 30.0}},
		Type: types.TransformNormalize,
		Params: &types.NormalizeParams{
			Columns: []string{"v"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "min_max", res.Metadata["normalization_method"])
	assert.Equal(t, 0.0, res.Data[0]["v"])
	assert.Equal(t, 1.0, res.Data[2]["v"])
}

func TestExecute_NormalizeUnknownMethod(t *testing.T) {
	_, err := Execute(types.TransformationRequest{
		Data: types.Table{{"v": 1.0}},
		Type: types.TransformNormalize,
		Params: &types.NormalizeParams{
			Columns: []string{"v"},
			Method:  "log",
		},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownMethod))
}

func TestExecute_PivotDefaultsToSum(t *testing.T) {
	res, err := Execute(types.TransformationRequest{
		Data: types.Table{
			{"region": "North", "product": "A", "sales": 1.0},
			{"region": "North", "product": "A", "sales": 2.0},
		},
		Type: types.TransformPivot,
		Params: &types.PivotParams{
			Index:        "region",
			PivotColumns: "product",
			Values:       "sales",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "sum", res.Metadata["aggregation_function"])
	assert.Equal(t, 3.0, res.Data[0]["A"])
}

func TestExecute_PivotMissingParameters(t *testing.T) {
	_, err := Execute(types.TransformationRequest{
		Data:   types.Table{{"a": 1.0}},
		Type:   types.TransformPivot,
		Params: &types.PivotParams{Index: "a"},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMissingParameter))
}

func TestExecute_InputDataNeverMutated(t *testing.T) {
	data := types.Table{{"v": 10.0}, {"v": 20.0}}

	_, err := Execute(types.TransformationRequest{
		Data:   data,
		Type:   types.TransformNormalize,
		Params: &types.NormalizeParams{Columns: []string{"v"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, data[0]["v"])
	assert.Equal(t, 20.0, data[1]["v"])
}
