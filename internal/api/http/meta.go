package http

import (
	"net/http"
	"time"

	"github.com/tabshift/tabshift/internal/observability"
	"github.com/tabshift/tabshift/internal/transform/normalizer"
	"github.com/tabshift/tabshift/internal/transform/reduce"
	"github.com/tabshift/tabshift/pkg/types"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, startedAt: time.Now()}
}

// ServeHTTP handles GET /v1/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// typeDescriptor documents one transformation type for API discovery.
type typeDescriptor struct {
	Type        types.TransformationType `json:"type"`
	Description string                   `json:"description"`
	Required    []string                 `json:"required_parameters"`
	Optional    []string                 `json:"optional_parameters,omitempty"`
}

var typeCatalog = []typeDescriptor{
	{
		Type:        types.TransformAggregate,
		Description: "Group rows by one or more columns and compute statistics per group",
		Required:    []string{"group_by"},
		Optional:    []string{"aggregations"},
	},
	{
		Type:        types.TransformFilter,
		Description: "Keep rows matching all conditions",
		Required:    []string{"conditions"},
	},
	{
		Type:        types.TransformNormalize,
		Description: "Rescale numeric columns using min_max, z_score, or robust scaling",
		Required:    []string{"columns"},
		Optional:    []string{"method"},
	},
	{
		Type:        types.TransformPivot,
		Description: "Reshape rows into a wide table keyed by an index column",
		Required:    []string{"index", "pivot_columns", "values"},
		Optional:    []string{"aggfunc"},
	},
}

// TypesHandler serves the transformation type catalog.
type TypesHandler struct{}

// ServeHTTP handles GET /v1/types.
func (h *TypesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transformation_types":  typeCatalog,
		"operators":             types.Operators(),
		"statistics":            reduce.Statistics(),
		"normalization_methods": normalizer.Methods(),
	})
}

// StatsHandler exposes usage statistics collected by the service.
type StatsHandler struct {
	stats      *observability.UsageStats
	topColumns int
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(stats *observability.UsageStats, topColumns int) *StatsHandler {
	return &StatsHandler{stats: stats, topColumns: topColumns}
}

// ServeHTTP handles GET /v1/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Snapshot(h.topColumns))
}
