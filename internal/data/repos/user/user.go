package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) error
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByLogin(dbc dbctx.Context, login string) (*types.User, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	AttachOrganizationIfUnset(dbc dbctx.Context, userID, orgID uuid.UUID) (bool, error)
	List(dbc dbctx.Context, orgID *uuid.UUID) ([]*types.User, error)
	UpdateLastLogin(dbc dbctx.Context, userID uuid.UUID, at time.Time) error
	Count(dbc dbctx.Context) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, u *types.User) error {
	if u == nil {
		return nil
	}
	return dbc.Use(ur.db).Omit("Organization").Create(u).Error
}

// GetByID returns nil, nil when the user does not exist.
func (ur *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var u types.User
	err := dbc.Use(ur.db).
		Preload("Organization").
		Where("id = ?", userID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLogin matches the username exactly or the email case-insensitively.
func (ur *userRepo) GetByLogin(dbc dbctx.Context, login string) (*types.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, nil
	}
	var u types.User
	err := dbc.Use(ur.db).
		Preload("Organization").
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		Order("date_joined ASC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	var count int64
	if err := dbc.Use(ur.db).
		Model(&types.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var count int64
	if err := dbc.Use(ur.db).
		Model(&types.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AttachOrganizationIfUnset links the user to orgID only while the user has no
// organization. It reports whether this call performed the link.
func (ur *userRepo) AttachOrganizationIfUnset(dbc dbctx.Context, userID, orgID uuid.UUID) (bool, error) {
	res := dbc.Use(ur.db).
		Model(&types.User{}).
		Where("id = ? AND organization_id IS NULL", userID).
		Update("organization_id", orgID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// List returns users newest first; a nil orgID lists every user.
func (ur *userRepo) List(dbc dbctx.Context, orgID *uuid.UUID) ([]*types.User, error) {
	q := dbc.Use(ur.db).Preload("Organization")
	if orgID != nil {
		q = q.Where("organization_id = ?", *orgID)
	}
	var results []*types.User
	if err := q.Order("date_joined DESC").Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) UpdateLastLogin(dbc dbctx.Context, userID uuid.UUID, at time.Time) error {
	return dbc.Use(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("last_login", at.UTC()).Error
}

func (ur *userRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Use(ur.db).Model(&types.User{}).Count(&n).Error
	return n, err
}
