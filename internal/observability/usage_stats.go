// Package observability provides transformation usage tracking for
// performance monitoring and request-shape analysis.
package observability

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/tabshift/tabshift/pkg/types"
)

// UsageStats tracks transformation type frequency, column access
// frequency, and distinct request shapes.
type UsageStats struct {
	mu         sync.RWMutex
	typeFreq   map[types.TransformationType]*TypeStats
	columnFreq map[string]*ColumnStats
	shapes     map[uint64]time.Time
	window     time.Duration
}

// TypeStats holds statistics for one transformation type.
type TypeStats struct {
	Type     types.TransformationType
	Count    int64
	TotalMS  float64
	LastSeen time.Time
}

// ColumnStats holds statistics for a column referenced by requests.
type ColumnStats struct {
	Column    string
	Frequency int64
	LastSeen  time.Time
	Operators map[string]int // operator or role → count (e.g. "gte" → 5, "group_by" → 2)
}

// NewUsageStats creates a new usage tracker.
// window: time duration for pruning old entries (e.g. 1 hour).
func NewUsageStats(window time.Duration) *UsageStats {
	return &UsageStats{
		typeFreq:   make(map[types.TransformationType]*TypeStats),
		columnFreq: make(map[string]*ColumnStats),
		shapes:     make(map[uint64]time.Time),
		window:     window,
	}
}

// RecordRequest records one executed transformation request and the time
// it took. Column references are extracted from the request parameters;
// the data itself never participates.
func (u *UsageStats) RecordRequest(req types.TransformationRequest, elapsedMS float64) {
	now := time.Now()
	fp := Fingerprint(req)

	u.mu.Lock()
	defer u.mu.Unlock()

	ts, exists := u.typeFreq[req.Type]
	if !exists {
		ts = &TypeStats{Type: req.Type}
		u.typeFreq[req.Type] = ts
	}
	ts.Count++
	ts.TotalMS += elapsedMS
	ts.LastSeen = now

	u.shapes[fp] = now

	for column, role := range columnRoles(req.Params) {
		for _, op := range role {
			u.recordColumn(column, op, now)
		}
	}
}

// recordColumn must be called with the lock held.
func (u *UsageStats) recordColumn(column, operator string, now time.Time) {
	stats, exists := u.columnFreq[column]
	if !exists {
		stats = &ColumnStats{
			Column:    column,
			Operators: make(map[string]int),
		}
		u.columnFreq[column] = stats
	}
	stats.Frequency++
	stats.LastSeen = now
	stats.Operators[operator]++
}

// TopColumns returns the top N referenced columns by frequency,
// descending. The returned slices are copies.
func (u *UsageStats) TopColumns(n int) []ColumnStats {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if n <= 0 || len(u.columnFreq) == 0 {
		return []ColumnStats{}
	}

	stats := make([]ColumnStats, 0, len(u.columnFreq))
	for _, s := range u.columnFreq {
		cp := ColumnStats{
			Column:    s.Column,
			Frequency: s.Frequency,
			LastSeen:  s.LastSeen,
			Operators: make(map[string]int, len(s.Operators)),
		}
		for op, count := range s.Operators {
			cp.Operators[op] = count
		}
		stats = append(stats, cp)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Column < stats[j].Column
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Snapshot is a point-in-time copy of the tracker's state.
type Snapshot struct {
	Types          []TypeStats   `json:"types"`
	TopColumns     []ColumnStats `json:"top_columns"`
	DistinctShapes int           `json:"distinct_shapes"`
}

// Snapshot returns a copy of the current statistics.
func (u *UsageStats) Snapshot(topColumns int) Snapshot {
	u.mu.RLock()
	typeStats := make([]TypeStats, 0, len(u.typeFreq))
	for _, ts := range u.typeFreq {
		typeStats = append(typeStats, *ts)
	}
	shapeCount := len(u.shapes)
	u.mu.RUnlock()

	sort.Slice(typeStats, func(i, j int) bool {
		if typeStats[i].Count != typeStats[j].Count {
			return typeStats[i].Count > typeStats[j].Count
		}
		return typeStats[i].Type < typeStats[j].Type
	})

	return Snapshot{
		Types:          typeStats,
		TopColumns:     u.TopColumns(topColumns),
		DistinctShapes: shapeCount,
	}
}

// Prune removes entries where time.Since(LastSeen) > window.
// Called periodically by the owning service.
func (u *UsageStats) Prune() {
	u.mu.Lock()
	defer u.mu.Unlock()

	threshold := time.Now().Add(-u.window)

	for t, ts := range u.typeFreq {
		if ts.LastSeen.Before(threshold) {
			delete(u.typeFreq, t)
		}
	}
	for col, stats := range u.columnFreq {
		if stats.LastSeen.Before(threshold) {
			delete(u.columnFreq, col)
		}
	}
	for fp, seen := range u.shapes {
		if seen.Before(threshold) {
			delete(u.shapes, fp)
		}
	}
}

// Fingerprint hashes the structural shape of a request: the
// transformation type plus the referenced columns and operators, never
// the data. Repeated uses of the same request template collapse to one
// shape.
func Fingerprint(req types.TransformationRequest) uint64 {
	var sb strings.Builder
	sb.WriteString(string(req.Type))

	roles := columnRoles(req.Params)
	columns := make([]string, 0, len(roles))
	for col := range roles {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		ops := roles[col]
		sort.Strings(ops)
		sb.WriteByte('|')
		sb.WriteString(col)
		sb.WriteByte(':')
		sb.WriteString(strings.Join(ops, ","))
	}

	return murmur3.Sum64([]byte(sb.String()))
}

// columnRoles extracts every column a parameter object references,
// mapped to the roles or operators it is used with.
func columnRoles(params types.Parameters) map[string][]string {
	roles := make(map[string][]string)
	add := func(col, role string) {
		roles[col] = append(roles[col], role)
	}

	switch p := params.(type) {
	case *types.AggregateParams:
		for _, col := range p.GroupBy {
			add(col, "group_by")
		}
		for col, stats := range p.Aggregations {
			for _, stat := range stats {
				add(col, stat)
			}
		}
	case *types.FilterParams:
		for _, cond := range p.Conditions {
			add(cond.Field, string(cond.Operator))
		}
	case *types.NormalizeParams:
		for _, col := range p.Columns {
			add(col, "normalize")
		}
	case *types.PivotParams:
		add(p.Index, "index")
		add(p.PivotColumns, "pivot")
		add(p.Values, "values")
	}

	return roles
}
