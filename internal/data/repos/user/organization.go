package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type OrganizationRepo interface {
	Create(dbc dbctx.Context, o *types.Organization) error
	GetByID(dbc dbctx.Context, orgID uuid.UUID) (*types.Organization, error)
	// CreateIfAbsent inserts a provisioned organization unless one with the
	// same key exists and reports whether this call inserted it.
	CreateIfAbsent(dbc dbctx.Context, name, provisionKey string) (bool, error)
	GetByProvisionKey(dbc dbctx.Context, provisionKey string) (*types.Organization, error)
	Count(dbc dbctx.Context) (total int64, active int64, err error)
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) Create(dbc dbctx.Context, o *types.Organization) error {
	if o == nil {
		return nil
	}
	return dbc.Use(r.db).Create(o).Error
}

func (r *organizationRepo) GetByID(dbc dbctx.Context, orgID uuid.UUID) (*types.Organization, error) {
	if orgID == uuid.Nil {
		return nil, nil
	}
	var o types.Organization
	err := dbc.Use(r.db).Where("id = ?", orgID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *organizationRepo) CreateIfAbsent(dbc dbctx.Context, name, provisionKey string) (bool, error) {
	key := provisionKey
	row := &types.Organization{Name: name, ProvisionKey: &key}
	res := dbc.Use(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provision_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *organizationRepo) GetByProvisionKey(dbc dbctx.Context, provisionKey string) (*types.Organization, error) {
	var o types.Organization
	err := dbc.Use(r.db).Where("provision_key = ?", provisionKey).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *organizationRepo) Count(dbc dbctx.Context) (int64, int64, error) {
	var out struct {
		Total  int64
		Active int64
	}
	err := dbc.Use(r.db).
		Model(&types.Organization{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN subscription_status = ? THEN 1 ELSE 0 END), 0) AS active", org.SubscriptionActive).
		Scan(&out).Error
	if err != nil {
		return 0, 0, err
	}
	return out.Total, out.Active, nil
}
