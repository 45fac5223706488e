// Package repomanager vends repository implementations bound to a database
// handle, runs schema migrations and scopes multi-step work in transactions.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/sessiontokens"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Conn is the non-transactional handle passed to the factories.
	Conn() dbx.DBTX
	// WithTx runs fn in one transaction; repositories built from the tx
	// handle see and commit together.
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	Accounts(db dbx.DBTX) accounts.Repository
	SessionTokens(db dbx.DBTX) sessiontokens.Repository
	Posts(db dbx.DBTX) posts.Repository
	Close() error
}
