package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch("images", "cache_hit")
	m.ObserveFetch("images", "cache_hit")
	m.ObserveFetch("forecast", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues("images", "cache_hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("forecast", "success")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveRecommendation(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `planner_recommendation_runs_total{degraded="true"} 1`))
}
