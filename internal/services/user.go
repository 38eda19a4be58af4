package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

const msgPermissionDenied = "You do not have permission to perform this action."

type PlatformStats struct {
	TotalOrganizations  int64 `json:"total_organizations"`
	ActiveOrganizations int64 `json:"active_organizations"`
	TotalUsers          int64 `json:"total_users"`
	TotalTransactions   int64 `json:"total_transactions"`
}

type UserService interface {
	// List returns every user to platform admins and the organization's
	// users to an organization admin. Agents are refused.
	List(ctx context.Context, caller *types.Caller) ([]*types.User, error)
	GetMe(ctx context.Context, caller *types.Caller) (*types.User, error)
	PlatformStats(ctx context.Context, caller *types.Caller) (*PlatformStats, error)
}

type userService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	orgRepo   repos.OrganizationRepo
	statsRepo repos.StatsRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, orgRepo repos.OrganizationRepo, statsRepo repos.StatsRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:        db,
		log:       serviceLog,
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		statsRepo: statsRepo,
	}
}

func (us *userService) List(ctx context.Context, caller *types.Caller) ([]*types.User, error) {
	const op = "user.list"
	if caller == nil {
		return nil, domainagg.Unauthorized(op, msgNoCredentials)
	}
	var (
		users []*types.User
		err   error
	)
	switch {
	case caller.IsPlatformAdmin():
		users, err = us.userRepo.List(dbctx.Of(ctx), nil)
	case caller.IsOrgAdmin():
		orgID := caller.OrgID()
		users, err = us.userRepo.List(dbctx.Of(ctx), &orgID)
	default:
		return nil, domainagg.Forbidden(op, msgPermissionDenied)
	}
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return users, nil
}

func (us *userService) GetMe(ctx context.Context, caller *types.Caller) (*types.User, error) {
	const op = "user.me"
	if caller == nil {
		return nil, domainagg.Unauthorized(op, msgNoCredentials)
	}
	u, err := us.userRepo.GetByID(dbctx.Of(ctx), caller.UserID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil {
		return nil, domainagg.NotFound(op, "Not found.")
	}
	return u, nil
}

func (us *userService) PlatformStats(ctx context.Context, caller *types.Caller) (*PlatformStats, error) {
	const op = "user.platform_stats"
	if caller == nil {
		return nil, domainagg.Unauthorized(op, msgNoCredentials)
	}
	if !caller.IsPlatformAdmin() {
		return nil, domainagg.Forbidden(op, msgPermissionDenied)
	}
	dbc := dbctx.Of(ctx)
	out := &PlatformStats{}
	var err error
	if out.TotalOrganizations, out.ActiveOrganizations, err = us.orgRepo.Count(dbc); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if out.TotalUsers, err = us.userRepo.Count(dbc); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if out.TotalTransactions, err = us.statsRepo.CountTransactions(dbc); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}
