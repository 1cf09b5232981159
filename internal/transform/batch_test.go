package transform

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabshift/tabshift/pkg/types"
)

func filterRequest(threshold float64) types.TransformationRequest {
	return types.TransformationRequest{
		Data: types.Table{{"v": 1.0}, {"v": 2.0}, {"v": 3.0}},
		Type: types.TransformFilter,
		Params: &types.FilterParams{
			Conditions: types.ConditionList{
				{Field: "v", Operator: types.OpGt, Value: threshold},
			},
		},
	}
}

func TestExecuteBatch_PreservesOrder(t *testing.T) {
	reqs := make([]types.TransformationRequest, 20)
	for i := range reqs {
		reqs[i] = filterRequest(float64(i % 3))
	}

	runner := NewRunner(4)
	results := runner.ExecuteBatch(context.Background(), reqs)

	require.Len(t, results, len(reqs))
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		require.NoError(t, res.Err)
		assert.Len(t, res.Result.Data, 3-(i%3))
	}
}

func TestExecuteBatch_FailuresAreIsolated(t *testing.T) {
	reqs := []types.TransformationRequest{
		filterRequest(1.0),
		{
			Data:   types.Table{{"v": 1.0}},
			Type:   types.TransformFilter,
			Params: &types.FilterParams{}, // missing conditions
		},
		filterRequest(2.0),
	}

	runner := NewRunner(2)
	results := runner.ExecuteBatch(context.Background(), reqs)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Result)
	assert.NoError(t, results[2].Err)
	assert.Len(t, results[2].Result.Data, 1)
}

func TestExecuteBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reqs := make([]types.TransformationRequest, 50)
	for i := range reqs {
		reqs[i] = filterRequest(0)
	}

	runner := NewRunner(1)
	results := runner.ExecuteBatch(ctx, reqs)

	cancelled := 0
	for _, res := range results {
		if res.Err == context.Canceled {
			cancelled++
		}
	}
	// With a pre-cancelled context most items never start. Some may win
	// the select against the semaphore, but failures must carry ctx.Err.
	assert.Greater(t, cancelled, 0)
	for _, res := range results {
		if res.Err != nil {
			assert.Equal(t, context.Canceled, res.Err)
		}
	}
}

func TestNewRunner_DefaultConcurrency(t *testing.T) {
	runner := NewRunner(0)
	assert.Equal(t, DefaultBatchConcurrency, runner.concurrency)

	runner = NewRunner(-5)
	assert.Equal(t, DefaultBatchConcurrency, runner.concurrency)
}

func TestExecuteBatch_Empty(t *testing.T) {
	runner := NewRunner(4)
	results := runner.ExecuteBatch(context.Background(), nil)
	assert.Empty(t, results)
}

func TestExecuteBatch_ManyConcurrent(t *testing.T) {
	// A batch much larger than the concurrency limit completes fully.
	reqs := make([]types.TransformationRequest, 200)
	for i := range reqs {
		data := make(types.Table, 10)
		for j := range data {
			data[j] = types.Record{"g": fmt.Sprintf("g%d", j%3), "v": float64(j)}
		}
		reqs[i] = types.TransformationRequest{
			Data: data,
			Type: types.TransformAggregate,
			Params: &types.AggregateParams{
				GroupBy:      []string{"g"},
				Aggregations: map[string]types.StatisticList{"v": {"sum"}},
			},
		}
	}

	runner := NewRunner(8)
	results := runner.ExecuteBatch(context.Background(), reqs)

	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Len(t, res.Result.Data, 3)
	}
}
