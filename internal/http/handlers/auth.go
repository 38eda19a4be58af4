package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/agencycrm-backend/internal/http/response"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/accounts/register/
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// POST /api/token/
// body: { "username": "...", "password": "..." }; username may be an email.
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/token/refresh/
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	pair, err := ah.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/accounts/logout/
func (ah *AuthHandler) Logout(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := ah.authService.Logout(c.Request.Context(), caller); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
