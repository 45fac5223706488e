package repomanager

import (
	"context"

	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/sessiontokens"
)

// InMemoryRepositoryManager serves every repository from one memory.Store.
// The DBTX handles are ignored; there is no schema to migrate.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memory.NewStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return m.store.WithTx(ctx, func(ctx context.Context) error {
		return fn(ctx, nil)
	})
}

func (m *InMemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return memory.NewAccountRepository(m.store)
}

func (m *InMemoryRepositoryManager) SessionTokens(dbx.DBTX) sessiontokens.Repository {
	return memory.NewSessionTokenRepository(m.store)
}

func (m *InMemoryRepositoryManager) Posts(dbx.DBTX) posts.Repository {
	return memory.NewPostRepository(m.store)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
