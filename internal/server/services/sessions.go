package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/sessiontokens"
)

// SessionRegistry tracks which issued tokens of an account are still live.
// A token with a valid signature authenticates only while it is registered.
type SessionRegistry struct {
	repomanager repomanager.RepositoryManager
	timeout     time.Duration
}

func NewSessionRegistry(m repomanager.RepositoryManager, timeout time.Duration) *SessionRegistry {
	return &SessionRegistry{repomanager: m, timeout: timeout}
}

func (r *SessionRegistry) repo() sessiontokens.Repository {
	return r.repomanager.SessionTokens(r.repomanager.Conn())
}

// Register appends token to the account's live set.
func (r *SessionRegistry) Register(ctx context.Context, accountID, token string) error {
	ctx, cancel := dbx.Bound(ctx, r.timeout)
	defer cancel()
	return r.repo().Add(ctx, accountID, token)
}

// RevokeOne removes exactly token; other sessions of the account stay live.
func (r *SessionRegistry) RevokeOne(ctx context.Context, accountID, token string) error {
	ctx, cancel := dbx.Bound(ctx, r.timeout)
	defer cancel()
	return r.repo().Delete(ctx, accountID, token)
}

// RevokeAll ends every session of the account.
func (r *SessionRegistry) RevokeAll(ctx context.Context, accountID string) error {
	ctx, cancel := dbx.Bound(ctx, r.timeout)
	defer cancel()
	return r.repo().DeleteAll(ctx, accountID)
}

func (r *SessionRegistry) IsLive(ctx context.Context, accountID, token string) (bool, error) {
	ctx, cancel := dbx.Bound(ctx, r.timeout)
	defer cancel()
	return r.repo().Exists(ctx, accountID, token)
}

// Tokens lists the account's live tokens in issuance order.
func (r *SessionRegistry) Tokens(ctx context.Context, accountID string) ([]string, error) {
	ctx, cancel := dbx.Bound(ctx, r.timeout)
	defer cancel()
	return r.repo().List(ctx, accountID)
}
