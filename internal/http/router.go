package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	httpH "github.com/yungbote/agencycrm-backend/internal/http/handlers"
	httpMW "github.com/yungbote/agencycrm-backend/internal/http/middleware"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

// CollectionHandlers holds one handler per CRM collection.
type CollectionHandlers struct {
	Contacts     *httpH.CollectionHandler[types.Contact]
	Properties   *httpH.CollectionHandler[types.Property]
	Transactions *httpH.CollectionHandler[types.Transaction]
	Deals        *httpH.CollectionHandler[types.Deal]
	Tasks        *httpH.CollectionHandler[types.Task]
	Events       *httpH.CollectionHandler[types.Event]
	Types        *httpH.CollectionHandler[types.TransactionType]
	Statuses     *httpH.CollectionHandler[types.TransactionStatus]
	Dates        *httpH.CollectionHandler[types.DateDefinition]
}

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	ServiceName    string
	TracingEnabled bool

	AuthHandler      *httpH.AuthHandler
	AuthMiddleware   *httpMW.AuthMiddleware
	UserHandler      *httpH.UserHandler
	DashboardHandler *httpH.DashboardHandler
	Collections      CollectionHandlers

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/accounts/register/", cfg.AuthHandler.Register)
			api.POST("/token/", cfg.AuthHandler.Login)
			api.POST("/token/refresh/", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Accounts
		if cfg.AuthHandler != nil {
			protected.POST("/accounts/logout/", cfg.AuthHandler.Logout)
		}
		if cfg.UserHandler != nil {
			protected.GET("/accounts/me/", cfg.UserHandler.GetMe)
			protected.GET("/accounts/users/", cfg.UserHandler.ListUsers)
			protected.GET("/accounts/platform-stats/", cfg.UserHandler.PlatformStats)
		}

		// Analytics
		if cfg.DashboardHandler != nil {
			protected.GET("/analytics/dashboard/stats/", cfg.DashboardHandler.Stats)
		}

		// CRM collections
		col := cfg.Collections
		httpH.RegisterCollection(protected, col.Contacts)
		httpH.RegisterCollection(protected, col.Properties)
		httpH.RegisterCollection(protected, col.Transactions)
		httpH.RegisterCollection(protected, col.Deals)
		httpH.RegisterCollection(protected, col.Tasks)
		httpH.RegisterCollection(protected, col.Events)
		httpH.RegisterCollection(protected, col.Types)
		httpH.RegisterCollection(protected, col.Statuses)
		httpH.RegisterCollection(protected, col.Dates)
	}

	return r
}
