package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/agencycrm-backend/internal/http/response"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/accounts/me/
func (uh *UserHandler) GetMe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	me, err := uh.userService.GetMe(c.Request.Context(), caller)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, me)
}

// GET /api/accounts/users/
func (uh *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	users, err := uh.userService.List(c.Request.Context(), caller)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, users)
}

// GET /api/accounts/platform-stats/
func (uh *UserHandler) PlatformStats(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	stats, err := uh.userService.PlatformStats(c.Request.Context(), caller)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}
