package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/pkg/types"
)

func salesData() types.Table {
	return types.Table{
		{"region": "North", "sales": 100.0},
		{"region": "North", "sales": 150.0},
		{"region": "South", "sales": 200.0},
		{"region": "South", "sales": 120.0},
	}
}

func TestAggregate_SumByRegion(t *testing.T) {
	out, err := Aggregate(salesData(), []string{"region"},
		map[string]types.StatisticList{"sales": {"sum"}})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Groups)
	assert.Equal(t, []string{"region", "sales"}, out.Columns)
	require.Len(t, out.Data, 2)

	// Groups appear in first-seen order.
	assert.Equal(t, "North", out.Data[0]["region"])
	assert.Equal(t, 250.0, out.Data[0]["sales"])
	assert.Equal(t, "South", out.Data[1]["region"])
	assert.Equal(t, 320.0, out.Data[1]["sales"])
}

func TestAggregate_MultipleStatisticsPerColumn(t *testing.T) {
	out, err := Aggregate(salesData(), []string{"region"},
		map[string]types.StatisticList{"sales": {"sum", "mean", "count"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sales_sum", "sales_mean", "sales_count"}, out.Columns)
	assert.Equal(t, 250.0, out.Data[0]["sales_sum"])
	assert.Equal(t, 125.0, out.Data[0]["sales_mean"])
	assert.Equal(t, 2.0, out.Data[0]["sales_count"])
}

func TestAggregate_EmptyAggregationsCountsRows(t *testing.T) {
	out, err := Aggregate(salesData(), []string{"region"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "count"}, out.Columns)
	assert.Equal(t, 2.0, out.Data[0]["count"])
	assert.Equal(t, 2.0, out.Data[1]["count"])
}

func TestAggregate_MissingGroupColumnYieldsNullKey(t *testing.T) {
	data := types.Table{
		{"region": "North", "sales": 1.0},
		{"sales": 2.0},
		{"sales": 3.0},
	}

	out, err := Aggregate(data, []string{"region"},
		map[string]types.StatisticList{"sales": {"sum"}})
	require.NoError(t, err)

	require.Len(t, out.Data, 2)
	assert.Equal(t, "North", out.Data[0]["region"])
	assert.Nil(t, out.Data[1]["region"])
	assert.Equal(t, 5.0, out.Data[1]["sales"])
}

func TestAggregate_TypeTaggedKeysDoNotCollide(t *testing.T) {
	data := types.Table{
		{"k": "1", "v": 10.0},
		{"k": 1.0, "v": 20.0},
		{"k": nil, "v": 30.0},
	}

	out, err := Aggregate(data, []string{"k"},
		map[string]types.StatisticList{"v": {"sum"}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Groups)
}

func TestAggregate_SeparatorBytesInGroupValues(t *testing.T) {
	// Strings carrying the key encoding's own bytes must not shift
	// component boundaries and merge distinct tuples into one bucket.
	data := types.Table{
		{"a": "x\x1f\x00Sy", "b": "z", "v": 1.0},
		{"a": "x", "b": "y\x1f\x00Sz", "v": 2.0},
	}

	out, err := Aggregate(data, []string{"a", "b"},
		map[string]types.StatisticList{"v": {"sum"}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Groups)
	require.Len(t, out.Data, 2)
	assert.Equal(t, 1.0, out.Data[0]["v"])
	assert.Equal(t, 2.0, out.Data[1]["v"])
}

func TestAggregate_MultipleGroupColumns(t *testing.T) {
	data := types.Table{
		{"region": "North", "product": "A", "sales": 1.0},
		{"region": "North", "product": "B", "sales": 2.0},
		{"region": "North", "product": "A", "sales": 3.0},
	}

	out, err := Aggregate(data, []string{"region", "product"},
		map[string]types.StatisticList{"sales": {"sum"}})
	require.NoError(t, err)

	require.Len(t, out.Data, 2)
	assert.Equal(t, 4.0, out.Data[0]["sales"])
	assert.Equal(t, 2.0, out.Data[1]["sales"])
}

func TestAggregate_NullsIgnoredInStatistics(t *testing.T) {
	data := types.Table{
		{"g": "a", "v": 10.0},
		{"g": "a", "v": nil},
		{"g": "a", "v": 20.0},
	}

	out, err := Aggregate(data, []string{"g"},
		map[string]types.StatisticList{"v": {"mean"}})
	require.NoError(t, err)
	assert.Equal(t, 15.0, out.Data[0]["v"])
}

func TestAggregate_EmptyGroupBy(t *testing.T) {
	_, err := Aggregate(salesData(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAggregate_UnknownStatistic(t *testing.T) {
	_, err := Aggregate(salesData(), []string{"region"},
		map[string]types.StatisticList{"sales": {"mode"}})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "mode")
}

func TestAggregate_EmptyStatisticListRejected(t *testing.T) {
	// Aggregations were given but resolve to zero reductions; this must
	// not fall through to the count-per-group default.
	_, err := Aggregate(salesData(), []string{"region"},
		map[string]types.StatisticList{"sales": {}})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "no valid aggregation functions")
}

func TestAggregate_UnknownColumn(t *testing.T) {
	_, err := Aggregate(salesData(), []string{"region"},
		map[string]types.StatisticList{"revenue": {"sum"}})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "revenue")
}
