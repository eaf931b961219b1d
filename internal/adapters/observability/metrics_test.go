package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stay_search/internal/adapters/observability"
)

func scrape(t *testing.T) string {
	t.Helper()
	reg := observability.InitRegistry()
	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsRegistryAndHandler(t *testing.T) {
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	assert.Contains(t, scrape(t), "staysearch_http_requests_total")
}

func TestSearchMetrics(t *testing.T) {
	observability.ObserveSearch("domestic", "hit", 3*time.Millisecond)
	observability.ObserveMatchRule("exact name")
	observability.SetCatalogSize("overseas", 42)
	observability.ObserveReload("ok")

	out := scrape(t)
	assert.Contains(t, out, `staysearch_search_requests_total{outcome="hit",partition="domestic"}`)
	assert.Contains(t, out, `staysearch_search_match_rule_total{rule="exact name"}`)
	assert.Contains(t, out, `staysearch_catalog_listings{partition="overseas"} 42`)
	assert.Contains(t, out, `staysearch_catalog_reloads_total{status="ok"}`)
	assert.Contains(t, out, "staysearch_search_duration_seconds_bucket")
}

func TestLabelErr(t *testing.T) {
	assert.Equal(t, "none", observability.LabelErr(nil))
	assert.Equal(t, "*errors.errorString", observability.LabelErr(io.ErrUnexpectedEOF))
}
