package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndExpose(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/contacts/", "200", 15*time.Millisecond)
	m.IncStoreConflict("auth.register")
	m.IncTenantProvision("created")
	m.IncTenantProvision("existing")
	m.IncTenantProvision("existing")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/api/contacts/", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tenantProvisioned.WithLabelValues("existing")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "agencycrm_store_conflicts_total"))
	assert.True(t, strings.Contains(body, `operation="auth.register"`))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.IncAPIRejection("contacts", "not_found")
	m.IncTenantProvision("created")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
