package aggregates

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

// TxRunner provides the transaction boundary for multi-row writes.
type TxRunner interface {
	InTx(ctx context.Context, name string, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db    *gorm.DB
	hooks Hooks
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
// Nil hooks disable instrumentation.
func NewGormTxRunner(db *gorm.DB, hooks Hooks) TxRunner {
	if hooks == nil {
		hooks = NoopHooks()
	}
	return &gormTxRunner{db: db, hooks: hooks}
}

func (r *gormTxRunner) InTx(ctx context.Context, name string, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "tx", "transaction runner has nil db", nil)
	}
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
	status := operationStatus(err)
	if status == string(domainagg.CodeConflict) {
		r.hooks.IncConflict(name)
	}
	r.hooks.ObserveOperation(name, status, time.Since(start))
	return err
}

// operationStatus labels a finished transaction with "success" or the code
// its error maps to.
func operationStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeOf(MapError("tx", err))
	}
	return string(code)
}
