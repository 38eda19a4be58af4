// Package crm stores the agency's CRM records through one generic repository
// parameterized by entity type.
package crm

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

// Scope narrows a query; tenant filters and list filters are both scopes.
type Scope = func(*gorm.DB) *gorm.DB

type CollectionConfig struct {
	// Name is used for logging only.
	Name string
	// Order is applied to List in sequence, e.g. "created_at DESC".
	Order []string
	// Preloads names associations loaded on List and Get.
	Preloads []string
}

type CollectionRepo[T any] interface {
	List(dbc dbctx.Context, scopes ...Scope) ([]*T, error)
	// Get returns nil, nil when no visible row has the id.
	Get(dbc dbctx.Context, id uuid.UUID, scopes ...Scope) (*T, error)
	Exists(dbc dbctx.Context, id uuid.UUID, scopes ...Scope) (bool, error)
	Create(dbc dbctx.Context, row *T) error
	Save(dbc dbctx.Context, row *T) error
	// Delete reports how many visible rows were removed.
	Delete(dbc dbctx.Context, id uuid.UUID, scopes ...Scope) (int64, error)
	Count(dbc dbctx.Context, scopes ...Scope) (int64, error)
	// DeleteWhere removes every row matching the scopes. With no scopes it
	// removes nothing.
	DeleteWhere(dbc dbctx.Context, scopes ...Scope) (int64, error)
	// ClearColumn sets column to NULL on every row matching the scopes.
	ClearColumn(dbc dbctx.Context, column string, scopes ...Scope) (int64, error)
}

type collectionRepo[T any] struct {
	db  *gorm.DB
	log *logger.Logger
	cfg CollectionConfig
}

func NewCollectionRepo[T any](db *gorm.DB, baseLog *logger.Logger, cfg CollectionConfig) CollectionRepo[T] {
	if len(cfg.Order) == 0 {
		cfg.Order = []string{"created_at DESC", "id"}
	}
	return &collectionRepo[T]{
		db:  db,
		log: baseLog.With("repo", "CollectionRepo", "collection", cfg.Name),
		cfg: cfg,
	}
}

func (r *collectionRepo[T]) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range r.cfg.Preloads {
		q = q.Preload(p)
	}
	return q
}

func (r *collectionRepo[T]) List(dbc dbctx.Context, scopes ...Scope) ([]*T, error) {
	q := r.withPreloads(dbc.Use(r.db).Model(new(T)).Scopes(scopes...))
	for _, o := range r.cfg.Order {
		q = q.Order(o)
	}
	results := []*T{}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *collectionRepo[T]) Get(dbc dbctx.Context, id uuid.UUID, scopes ...Scope) (*T, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row T
	err := r.withPreloads(dbc.Use(r.db).Scopes(scopes...)).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *collectionRepo[T]) Exists(dbc dbctx.Context, id uuid.UUID, scopes ...Scope) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := dbc.Use(r.db).
		Model(new(T)).
		Scopes(scopes...).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *collectionRepo[T]) Create(dbc dbctx.Context, row *T) error {
	if row == nil {
		return nil
	}
	return dbc.Use(r.db).Omit(clause.Associations).Create(row).Error
}

func (r *collectionRepo[T]) Save(dbc dbctx.Context, row *T) error {
	if row == nil {
		return nil
	}
	return dbc.Use(r.db).Omit(clause.Associations).Save(row).Error
}

func (r *collectionRepo[T]) Delete(dbc dbctx.Context, id uuid.UUID, scopes ...Scope) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.Use(r.db).
		Scopes(scopes...).
		Where("id = ?", id).
		Delete(new(T))
	return res.RowsAffected, res.Error
}

func (r *collectionRepo[T]) Count(dbc dbctx.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := dbc.Use(r.db).Model(new(T)).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *collectionRepo[T]) DeleteWhere(dbc dbctx.Context, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, nil
	}
	res := dbc.Use(r.db).Scopes(scopes...).Delete(new(T))
	return res.RowsAffected, res.Error
}

func (r *collectionRepo[T]) ClearColumn(dbc dbctx.Context, column string, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, nil
	}
	res := dbc.Use(r.db).Model(new(T)).Scopes(scopes...).Update(column, nil)
	return res.RowsAffected, res.Error
}
