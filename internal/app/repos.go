package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
	"github.com/yungbote/agencycrm-backend/internal/services"
)

type Repos struct {
	Organization repos.OrganizationRepo
	User         repos.UserRepo
	UserToken    repos.UserTokenRepo
	Stats        repos.StatsRepo
	CRM          services.CRMRepos
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Organization: repos.NewOrganizationRepo(db, log),
		User:         repos.NewUserRepo(db, log),
		UserToken:    repos.NewUserTokenRepo(db, log),
		Stats:        repos.NewStatsRepo(db, log),
		CRM:          services.NewCRMRepos(db, log),
	}
}
