package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	User      services.UserService
	Tenant    services.TenantService
	Dashboard services.DashboardService
	CRM       services.CRMCollections
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	tx := aggregates.NewGormTxRunner(db, aggregates.NewObservabilityHooks(metrics))

	tenants := services.NewTenantService(db, log, tx, r.Organization, r.User, metrics)
	return Services{
		Auth: services.NewAuthService(db, log, tx, r.Organization, r.User, r.UserToken, metrics, services.AuthConfig{
			SecretKey:  cfg.JWTSecretKey,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		}),
		User:      services.NewUserService(db, log, r.User, r.Organization, r.Stats),
		Tenant:    tenants,
		Dashboard: services.NewDashboardService(db, log, r.Stats, time.Now),
		CRM:       services.NewCRMCollections(db, log, tx, tenants, r.CRM),
	}
}
