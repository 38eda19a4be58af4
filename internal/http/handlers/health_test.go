package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
)

func TestHealthCheckPingsDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	h := NewHealthHandler(db)

	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)
	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		return rec
	}

	if rec := serve(); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthy: got=%d %q", rec.Code, rec.Body.String())
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql pool: %v", err)
	}
	_ = sqlDB.Close()
	if rec := serve(); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed database: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}
