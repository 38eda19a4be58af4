package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/apierr"
)

// Metrics records latency per route and counts rejected requests per CRM
// resource and error code.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(status), time.Since(start))
		if status >= 400 {
			m.IncAPIRejection(resourceOf(route), rejectionCode(c, status))
		}
	}
}

// resourceOf maps "/api/contacts/:id/" to "contacts". Routes outside /api
// are reported as "system".
func resourceOf(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return "system"
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "system"
	}
	return rest
}

func rejectionCode(c *gin.Context, status int) string {
	if last := c.Errors.Last(); last != nil {
		if code := domainagg.CodeOf(last.Err); code != "" {
			return string(code)
		}
		var ae *apierr.Error
		if errors.As(last.Err, &ae) && ae.Code != "" {
			return ae.Code
		}
	}
	return strconv.Itoa(status)
}
