package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/apierr"
)

const genericInternalMessage = "Internal server error."

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusFor maps an error code to its HTTP status. Conflicts are 400 to
// keep the public contract of registration.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation, domainagg.CodeConflict:
		return http.StatusBadRequest
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func RespondError(c *gin.Context, status int, code string, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: msg, Code: code})
}

// RespondErr writes err using its coded status. Unknown errors become a
// generic 500 with the detail kept out of the body.
func RespondErr(c *gin.Context, err error) {
	if err == nil {
		RespondError(c, http.StatusInternalServerError, string(domainagg.CodeInternal), genericInternalMessage)
		return
	}
	_ = c.Error(err)

	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		msg := ""
		if apiErr.Err != nil && apiErr.Status < http.StatusInternalServerError {
			msg = apiErr.Err.Error()
		}
		if apiErr.Status >= http.StatusInternalServerError {
			msg = genericInternalMessage
		}
		RespondError(c, apiErr.Status, apiErr.Code, msg)
		return
	}
	if ae, ok := domainagg.As(err); ok {
		RespondError(c, StatusFor(ae.Code), string(ae.Code), ae.PublicMessage())
		return
	}
	RespondError(c, http.StatusInternalServerError, string(domainagg.CodeInternal), genericInternalMessage)
}
