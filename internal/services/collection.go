package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	crmrepo "github.com/yungbote/agencycrm-backend/internal/data/repos/crm"
	"github.com/yungbote/agencycrm-backend/internal/data/scope"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

// FilterFunc turns one query-string value into a query scope.
type FilterFunc func(value string) (crmrepo.Scope, error)

// ReferenceCheck validates and completes the rows a new or updated record
// points at. It runs inside the write transaction after ownership is stamped.
type ReferenceCheck[T any] func(dbc dbctx.Context, caller *types.Caller, row *T) error

// DeleteRule settles the rows that point at a record about to be deleted.
// It runs in the delete transaction; an error aborts the delete.
type DeleteRule[T any] func(dbc dbctx.Context, row *T) error

type CollectionConfig[T any] struct {
	Name     string
	Strategy scope.Strategy
	Filters  map[string]FilterFunc
	Refs     ReferenceCheck[T]
	OnDelete DeleteRule[T]
}

// Collection is the scoped CRUD surface shared by every CRM entity.
type Collection[T any] interface {
	Name() string
	List(ctx context.Context, caller *types.Caller, filter map[string]string) ([]*T, error)
	Get(ctx context.Context, caller *types.Caller, id uuid.UUID) (*T, error)
	Create(ctx context.Context, caller *types.Caller, row *T) (*T, error)
	// Update loads the visible row, lets apply patch it, then restores its
	// identity and ownership before validating and saving.
	Update(ctx context.Context, caller *types.Caller, id uuid.UUID, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, caller *types.Caller, id uuid.UUID) error
}

type collection[T any] struct {
	db      *gorm.DB
	log     *logger.Logger
	tx      aggregates.TxRunner
	repo    crmrepo.CollectionRepo[T]
	tenants TenantService
	cfg     CollectionConfig[T]
}

func NewCollection[T any](
	db *gorm.DB,
	log *logger.Logger,
	tx aggregates.TxRunner,
	repo crmrepo.CollectionRepo[T],
	tenants TenantService,
	cfg CollectionConfig[T],
) Collection[T] {
	return &collection[T]{
		db:      db,
		log:     log.With("service", "Collection", "collection", cfg.Name),
		tx:      tx,
		repo:    repo,
		tenants: tenants,
		cfg:     cfg,
	}
}

func (c *collection[T]) Name() string { return c.cfg.Name }

func (c *collection[T]) op(action string) string { return c.cfg.Name + "." + action }

func (c *collection[T]) List(ctx context.Context, caller *types.Caller, filter map[string]string) ([]*T, error) {
	op := c.op("list")
	if caller == nil {
		return nil, domainagg.Unauthorized(op, "Authentication credentials were not provided.")
	}
	scopes := []crmrepo.Scope{c.cfg.Strategy.Filter(caller)}
	for key, raw := range filter {
		fn, ok := c.cfg.Filters[key]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			continue
		}
		sc, err := fn(raw)
		if err != nil {
			return nil, domainagg.Validation(op, err.Error())
		}
		scopes = append(scopes, sc)
	}
	rows, err := c.repo.List(dbctx.Of(ctx), scopes...)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (c *collection[T]) Get(ctx context.Context, caller *types.Caller, id uuid.UUID) (*T, error) {
	op := c.op("get")
	if caller == nil {
		return nil, domainagg.Unauthorized(op, "Authentication credentials were not provided.")
	}
	row, err := c.repo.Get(dbctx.Of(ctx), id, c.cfg.Strategy.Filter(caller))
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NotFound(op, "Not found.")
	}
	return row, nil
}

func (c *collection[T]) Create(ctx context.Context, caller *types.Caller, row *T) (*T, error) {
	op := c.op("create")
	if caller == nil {
		return nil, domainagg.Unauthorized(op, "Authentication credentials were not provided.")
	}
	if row == nil {
		return nil, domainagg.Validation(op, "Request body is required.")
	}
	if k, ok := any(row).(org.Keyed); ok {
		k.Meta().ID = uuid.Nil
		k.Meta().CreatedAt = time.Time{}
	}
	if d, ok := any(row).(interface{ ApplyCreateDefaults() }); ok {
		d.ApplyCreateDefaults()
	}
	if err := prepare(row); err != nil {
		return nil, err
	}

	// Phase one commits on its own so a failed write never leaves the
	// caller half provisioned.
	if c.cfg.Strategy.RequiresTenant() {
		if _, err := c.tenants.EnsureTenant(ctx, caller); err != nil {
			return nil, err
		}
	}

	var out *T
	err := c.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		if err := c.cfg.Strategy.Stamp(row, caller); err != nil {
			return err
		}
		if c.cfg.Refs != nil {
			if err := c.cfg.Refs(dbc, caller, row); err != nil {
				return err
			}
		}
		if err := c.repo.Create(dbc, row); err != nil {
			return err
		}
		created, err := c.reload(dbc, row)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		c.logFailure(op, caller, err)
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (c *collection[T]) Update(ctx context.Context, caller *types.Caller, id uuid.UUID, apply func(*T) error) (*T, error) {
	op := c.op("update")
	if caller == nil {
		return nil, domainagg.Unauthorized(op, "Authentication credentials were not provided.")
	}
	var out *T
	err := c.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		row, err := c.repo.Get(dbc, id, c.cfg.Strategy.Filter(caller))
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "Not found.")
		}
		stored := *row
		if apply != nil {
			if err := apply(row); err != nil {
				return domainagg.Validation(op, err.Error())
			}
		}
		if k, ok := any(row).(org.Keyed); ok {
			*k.Meta() = *any(&stored).(org.Keyed).Meta()
		}
		c.cfg.Strategy.Carry(row, &stored)

		if err := prepare(row); err != nil {
			return err
		}
		if c.cfg.Refs != nil {
			if err := c.cfg.Refs(dbc, caller, row); err != nil {
				return err
			}
		}
		if err := c.repo.Save(dbc, row); err != nil {
			return err
		}
		updated, err := c.reload(dbc, row)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		c.logFailure(op, caller, err)
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (c *collection[T]) Delete(ctx context.Context, caller *types.Caller, id uuid.UUID) error {
	op := c.op("delete")
	if caller == nil {
		return domainagg.Unauthorized(op, "Authentication credentials were not provided.")
	}
	err := c.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		row, err := c.repo.Get(dbc, id, c.cfg.Strategy.Filter(caller))
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "Not found.")
		}
		if c.cfg.OnDelete != nil {
			if err := c.cfg.OnDelete(dbc, row); err != nil {
				return err
			}
		}
		_, err = c.repo.Delete(dbc, id)
		return err
	})
	if err != nil {
		c.logFailure(op, caller, err)
		return aggregates.MapError(op, err)
	}
	return nil
}

// reload re-reads a written row so defaults and associations are populated.
func (c *collection[T]) reload(dbc dbctx.Context, row *T) (*T, error) {
	k, ok := any(row).(org.Keyed)
	if !ok {
		return row, nil
	}
	fresh, err := c.repo.Get(dbc, k.Meta().ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return row, nil
	}
	return fresh, nil
}

func (c *collection[T]) logFailure(op string, caller *types.Caller, err error) {
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation, domainagg.CodeNotFound, domainagg.CodeForbidden, domainagg.CodeConflict:
		c.log.Debug("Request rejected", "op", op, "user_id", caller.UserID, "error", err)
	default:
		c.log.Error("Write failed", "op", op, "user_id", caller.UserID, "error", err)
	}
}

// prepare normalizes defaults and validates enumerations before any mutation.
func prepare(row any) error {
	if n, ok := row.(org.Normalizer); ok {
		n.Normalize()
	}
	if v, ok := row.(org.Validator); ok {
		return v.Validate()
	}
	return nil
}
