package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/assessments/:id/scores", http.StatusOK, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordNarrative(NarrativeOutcomeSuccess)
	m.RecordNarrative(NarrativeOutcomeFallback)
	m.RecordNarrative(NarrativeOutcomeSuccess)
	m.RecordJob(JobTypeTakeawayWarm, errors.New("boom"))

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, map[string]uint64{NarrativeOutcomeSuccess: 2, NarrativeOutcomeFallback: 1}, snap.NarrativeOutcomes)
}

func TestMetricsHandlerExposesNarrativeCounter(t *testing.T) {
	m := NewMetricsService()
	m.RecordNarrative(NarrativeOutcomeFallback)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `narrative_requests_total{outcome="fallback"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.RecordNarrative(NarrativeOutcomeSuccess)
		m.RecordJob("x", nil)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCacheServiceDisabled(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, 0, nil, false)
	var dest string
	hit, err := cache.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, cache.Set(context.Background(), "k", "v", 0))
}

func TestCacheServiceRoundTrip(t *testing.T) {
	memory := newMemoryCache()
	cache := NewCacheService(memory, NewMetricsService(), time.Minute, nil, true)
	require.NoError(t, cache.Set(context.Background(), "takeaway:1", map[string]string{"a": "b"}, 0))

	var dest map[string]string
	hit, err := cache.Get(context.Background(), "takeaway:1", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "b", dest["a"])

	require.NoError(t, cache.Invalidate(context.Background(), "takeaway:*"))
	hit, err = cache.Get(context.Background(), "takeaway:1", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}
