package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/apierr"
)

func TestRespondErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", domainagg.Validation("op", "title is required."), 400, "validation", "title is required."},
		{"conflict", domainagg.Conflict("op", "Username already exists."), 400, "conflict", "Username already exists."},
		{"unauthorized", domainagg.Unauthorized("op", "nope"), 401, "unauthorized", "nope"},
		{"forbidden", domainagg.Forbidden("op", "denied"), 403, "forbidden", "denied"},
		{"not found", domainagg.NotFound("op", "Not found."), 404, "not_found", "Not found."},
		{"internal hides cause", domainagg.Wrap(domainagg.CodeInternal, "op", errors.New("pq: password leaked")), 500, "internal", "Internal server error."},
		{"internal with client message", domainagg.NewError(domainagg.CodeInternal, "op", "Registration failed.", errors.New("boom")), 500, "internal", "Registration failed."},
		{"plain error", errors.New("boom"), 500, "internal", "Internal server error."},
		{"api error", apierr.BadRequest("invalid_id", errors.New("id must be a UUID.")), 400, "invalid_id", "id must be a UUID."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondErr(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.status)
			}
			var body ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code || body.Error != tc.msg {
				t.Fatalf("body: got=%+v want code=%q msg=%q", body, tc.code, tc.msg)
			}
		})
	}
}
