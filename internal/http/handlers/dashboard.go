package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/agencycrm-backend/internal/http/response"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /api/analytics/dashboard/stats/
func (dh *DashboardHandler) Stats(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	stats, err := dh.dashboardService.Stats(c.Request.Context(), caller)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}
