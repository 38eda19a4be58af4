package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userToken *types.UserToken) error
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) (int64, error)
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userToken *types.UserToken) error {
	if userToken == nil {
		return nil
	}
	return dbc.Use(utr.db).Create(userToken).Error
}

// GetByRefreshToken returns nil, nil for unknown tokens.
func (utr *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error) {
	if refreshToken == "" {
		return nil, nil
	}
	var row types.UserToken
	err := dbc.Use(utr.db).
		Where("refresh_token = ?", refreshToken).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	var results []*types.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Use(utr.db).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByIDs reports how many rows were removed so a refresh can detect a
// concurrent rotation of the same token.
func (utr *userTokenRepo) DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) (int64, error) {
	if len(tokenIDs) == 0 {
		return 0, nil
	}
	res := dbc.Use(utr.db).
		Where("id IN ?", tokenIDs).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}

func (utr *userTokenRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.Use(utr.db).
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.Use(utr.db).
		Where("expires_at <= ?", now.UTC()).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}
