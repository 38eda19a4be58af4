package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/repos/analytics"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/auth"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/crm"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/user"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type OrganizationRepo = user.OrganizationRepo
type UserTokenRepo = auth.UserTokenRepo

type StatsRepo = analytics.StatsRepo

type CollectionConfig = crm.CollectionConfig

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return user.NewOrganizationRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewStatsRepo(db *gorm.DB, baseLog *logger.Logger) StatsRepo {
	return analytics.NewStatsRepo(db, baseLog)
}

func NewCollectionRepo[T any](db *gorm.DB, baseLog *logger.Logger, cfg CollectionConfig) crm.CollectionRepo[T] {
	return crm.NewCollectionRepo[T](db, baseLog, cfg)
}
