package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/apierr"
)

func TestResourceOf(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"/api/contacts/:id/":              "contacts",
		"/api/transaction-types/":         "transaction-types",
		"/api/analytics/dashboard/stats/": "analytics",
		"/healthcheck":                    "system",
		"unknown":                         "system",
	}
	for route, want := range cases {
		if got := resourceOf(route); got != want {
			t.Fatalf("resourceOf(%q): got=%q want=%q", route, got, want)
		}
	}
}

func TestMetricsCountsRejectionsByResourceAndCode(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	m := observability.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/contacts/:id/", func(c *gin.Context) {
		_ = c.Error(domainagg.NotFound("contacts.get", "Not found."))
		c.AbortWithStatus(http.StatusNotFound)
	})
	r.GET("/api/deals/:id/", func(c *gin.Context) {
		_ = c.Error(apierr.BadRequest("validation", errors.New("Invalid id.")))
		c.AbortWithStatus(http.StatusBadRequest)
	})
	r.GET("/api/tasks/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/contacts/x/", "/api/deals/x/", "/api/tasks/"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`agencycrm_http_rejections_total{code="not_found",resource="contacts"} 1`,
		`agencycrm_http_rejections_total{code="validation",resource="deals"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
	if strings.Contains(body, `resource="tasks"`) {
		t.Fatalf("successful request counted as rejection")
	}
}
