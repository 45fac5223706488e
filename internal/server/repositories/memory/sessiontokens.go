package memory

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/sessiontokens"
)

// SessionTokenRepository implements sessiontokens.Repository.
type SessionTokenRepository struct {
	store *Store
}

var _ sessiontokens.Repository = (*SessionTokenRepository)(nil)

func NewSessionTokenRepository(store *Store) *SessionTokenRepository {
	return &SessionTokenRepository{store: store}
}

func (r *SessionTokenRepository) Add(ctx context.Context, accountID, token string) error {
	return r.store.write(ctx, func(d *state) error {
		if _, ok := d.accounts[accountID]; !ok {
			return errForeignKey("session_tokens", accountID)
		}
		for _, list := range d.tokens {
			if slices.Contains(list, token) {
				return nil
			}
		}
		d.tokens[accountID] = append(d.tokens[accountID], token)
		return nil
	})
}

func (r *SessionTokenRepository) Delete(ctx context.Context, accountID, token string) error {
	return r.store.write(ctx, func(d *state) error {
		list := slices.DeleteFunc(d.tokens[accountID], func(t string) bool { return t == token })
		if len(list) == 0 {
			delete(d.tokens, accountID)
			return nil
		}
		d.tokens[accountID] = list
		return nil
	})
}

func (r *SessionTokenRepository) DeleteAll(ctx context.Context, accountID string) error {
	return r.store.write(ctx, func(d *state) error {
		delete(d.tokens, accountID)
		return nil
	})
}

func (r *SessionTokenRepository) Exists(ctx context.Context, accountID, token string) (bool, error) {
	var ok bool
	err := r.store.read(ctx, func(d *state) error {
		ok = slices.Contains(d.tokens[accountID], token)
		return nil
	})
	return ok, err
}

func (r *SessionTokenRepository) List(ctx context.Context, accountID string) ([]string, error) {
	var tokens []string
	err := r.store.read(ctx, func(d *state) error {
		tokens = slices.Clone(d.tokens[accountID])
		return nil
	})
	return tokens, err
}
