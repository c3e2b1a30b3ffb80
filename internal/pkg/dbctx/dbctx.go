package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction. Repos
// fall back to their own handle when Tx is nil.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New wraps a bare context with no transaction bound.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// WithTx binds a transaction to an existing Context.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}
