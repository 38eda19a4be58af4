package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/http/response"
	"github.com/yungbote/agencycrm-backend/internal/platform/apierr"
	"github.com/yungbote/agencycrm-backend/internal/platform/ctxutil"
)

// requireCaller returns the caller attached by the auth middleware, writing a
// 401 when there is none.
func requireCaller(c *gin.Context) (*types.Caller, bool) {
	caller := ctxutil.GetCaller(c.Request.Context())
	if caller == nil {
		response.RespondErr(c, domainagg.Unauthorized("handler", "Authentication credentials were not provided."))
		return nil, false
	}
	return caller, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondErr(c, apierr.BadRequest(string(domainagg.CodeValidation), errors.New("Invalid id.")))
		return uuid.Nil, false
	}
	return id, true
}

func badBody(c *gin.Context, err error) {
	response.RespondErr(c, apierr.BadRequest(string(domainagg.CodeValidation), errors.New("Invalid request body: "+err.Error())))
}
