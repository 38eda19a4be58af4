package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

const (
	provisionCreated  = "created"
	provisionJoined   = "joined"
	provisionExisting = "existing"
)

// TenantService guarantees a caller belongs to an organization before a
// tenant-scoped write.
type TenantService interface {
	// EnsureTenant returns the caller's organization, creating
	// "{username}'s Agency" on first use. Concurrent calls for the same
	// user converge on one organization. The caller is updated in place.
	EnsureTenant(ctx context.Context, caller *types.Caller) (*types.Organization, error)
}

type tenantService struct {
	db       *gorm.DB
	log      *logger.Logger
	tx       aggregates.TxRunner
	orgRepo  repos.OrganizationRepo
	userRepo repos.UserRepo
	metrics  *observability.Metrics
}

func NewTenantService(
	db *gorm.DB,
	log *logger.Logger,
	tx aggregates.TxRunner,
	orgRepo repos.OrganizationRepo,
	userRepo repos.UserRepo,
	metrics *observability.Metrics,
) TenantService {
	return &tenantService{
		db:       db,
		log:      log.With("service", "TenantService"),
		tx:       tx,
		orgRepo:  orgRepo,
		userRepo: userRepo,
		metrics:  metrics,
	}
}

func (s *tenantService) EnsureTenant(ctx context.Context, caller *types.Caller) (*types.Organization, error) {
	const op = "tenant.ensure"
	if caller == nil {
		return nil, domainagg.Unauthorized(op, "Authentication credentials were not provided.")
	}

	if caller.HasOrganization() {
		o, err := s.orgRepo.GetByID(dbctx.Of(ctx), caller.OrgID())
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if o == nil {
			return nil, domainagg.NewError(domainagg.CodeInternal, op, "", nil)
		}
		s.metrics.IncTenantProvision(provisionExisting)
		return o, nil
	}

	var (
		effective *types.Organization
		outcome   = provisionExisting
	)
	err := s.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		current, err := s.userRepo.GetByID(dbc, caller.UserID)
		if err != nil {
			return err
		}
		if current == nil {
			return domainagg.Unauthorized(op, "User not found.")
		}
		if current.OrganizationID != nil {
			effective = current.Organization
			if effective == nil {
				return domainagg.NewError(domainagg.CodeInternal, op, "", nil)
			}
			return nil
		}

		key := org.AgencyName(current.Username)
		created, err := s.orgRepo.CreateIfAbsent(dbc, key, key)
		if err != nil {
			return err
		}
		provisioned, err := s.orgRepo.GetByProvisionKey(dbc, key)
		if err != nil {
			return err
		}
		if provisioned == nil {
			return domainagg.NewError(domainagg.CodeInternal, op, "", nil)
		}

		linked, err := s.userRepo.AttachOrganizationIfUnset(dbc, caller.UserID, provisioned.ID)
		if err != nil {
			return err
		}

		// Re-read: a concurrent request may have linked the user first.
		u, err := s.userRepo.GetByID(dbc, caller.UserID)
		if err != nil {
			return err
		}
		if u == nil || u.OrganizationID == nil {
			return domainagg.Unauthorized(op, "User not found.")
		}
		effective = provisioned
		if *u.OrganizationID != provisioned.ID {
			if effective, err = s.orgRepo.GetByID(dbc, *u.OrganizationID); err != nil {
				return err
			}
			if effective == nil {
				return domainagg.NewError(domainagg.CodeInternal, op, "", nil)
			}
		}

		switch {
		case created:
			outcome = provisionCreated
		case linked:
			outcome = provisionJoined
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to ensure tenant", "user_id", caller.UserID, "error", err)
		return nil, aggregates.MapError(op, err)
	}

	caller.AttachOrganization(effective.ID)
	s.metrics.IncTenantProvision(outcome)
	if outcome != provisionExisting {
		s.log.Info("Provisioned organization", "user_id", caller.UserID, "organization_id", effective.ID, "outcome", outcome)
	}
	return effective, nil
}
