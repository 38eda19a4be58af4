package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Of wraps a plain context without a transaction.
func Of(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// Use returns the transaction when set, otherwise the fallback handle, bound to the request context.
func (c Context) Use(fallback *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx)
}
