package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/http"
	httpH "github.com/yungbote/agencycrm-backend/internal/http/handlers"
	httpMW "github.com/yungbote/agencycrm-backend/internal/http/middleware"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Dashboard   *httpH.DashboardHandler
	Collections http.CollectionHandlers
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	crm := services.CRM
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Auth:      httpH.NewAuthHandler(services.Auth),
		User:      httpH.NewUserHandler(services.User),
		Dashboard: httpH.NewDashboardHandler(services.Dashboard),
		Collections: http.CollectionHandlers{
			Contacts:     httpH.NewCollectionHandler(crm.Contacts),
			Properties:   httpH.NewCollectionHandler(crm.Properties),
			Transactions: httpH.NewCollectionHandler(crm.Transactions),
			Deals:        httpH.NewCollectionHandler(crm.Deals),
			Tasks:        httpH.NewCollectionHandler(crm.Tasks),
			Events:       httpH.NewCollectionHandler(crm.Events),
			Types:        httpH.NewCollectionHandler(crm.Types),
			Statuses:     httpH.NewCollectionHandler(crm.Statuses),
			Dates:        httpH.NewCollectionHandler(crm.Dates),
		},
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth, cfg.Location),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log.With("component", "http"),
		Metrics:          metrics,
		CORSOrigins:      cfg.CORSOrigins,
		ServiceName:      cfg.Otel.ServiceName,
		TracingEnabled:   cfg.Otel.Enabled,
		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		AuthMiddleware:   middleware.Auth,
		UserHandler:      handlers.User,
		DashboardHandler: handlers.Dashboard,
		Collections:      handlers.Collections,
	})
}
