package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManager_RejectsRequestsAfterShutdown(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{})

	require.True(t, sm.TrackRequest())
	sm.UntrackRequest()
	assert.False(t, sm.IsShuttingDown())
	assert.Equal(t, int64(0), sm.InFlightCount())

	require.NoError(t, sm.Shutdown(context.Background(), "test"))

	assert.True(t, sm.IsShuttingDown())
	assert.False(t, sm.TrackRequest())
}

func TestShutdownManager_ClosersRunInReverseOrder(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{})

	var order []string
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "first")
		return nil
	}))
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "second")
		return nil
	}))

	require.NoError(t, sm.Shutdown(context.Background(), "test"))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestShutdownManager_DrainTimeoutReportsInFlight(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{
		ShutdownTimeout: 500 * time.Millisecond,
		DrainTimeout:    200 * time.Millisecond,
	})

	require.True(t, sm.TrackRequest())

	err := sm.Shutdown(context.Background(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in-flight")
}

func TestShutdownMiddleware_RejectsDuringShutdown(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{})
	handler := ShutdownMiddleware(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), sm.InFlightCount())

	require.NoError(t, sm.Shutdown(context.Background(), "test"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}
