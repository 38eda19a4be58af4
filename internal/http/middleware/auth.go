package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agencycrm-backend/internal/http/response"
	"github.com/yungbote/agencycrm-backend/internal/platform/ctxutil"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

const headerTimezone = "X-Timezone"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	defaultLoc  *time.Location
}

// NewAuthMiddleware resolves callers with authService. defaultLoc is used
// when a request carries no usable X-Timezone header.
func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, defaultLoc *time.Location) *AuthMiddleware {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
		defaultLoc:  defaultLoc,
	}
}

// RequireAuth loads the caller named by the bearer token from the database
// and attaches it to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		caller, err := am.authService.ResolveCaller(c.Request.Context(), tokenString, am.location(c))
		if err != nil {
			am.log.Debug("Rejected request", "path", c.Request.URL.Path, "error", err)
			response.RespondErr(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func (am *AuthMiddleware) location(c *gin.Context) *time.Location {
	name := strings.TrimSpace(c.GetHeader(headerTimezone))
	if name == "" {
		return am.defaultLoc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		am.log.Debug("Ignoring unknown timezone", "timezone", name)
		return am.defaultLoc
	}
	return loc
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
