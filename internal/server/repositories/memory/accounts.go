package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/accounts"
	"github.com/google/uuid"
)

// AccountRepository implements accounts.Repository.
type AccountRepository struct {
	store *Store
}

var _ accounts.Repository = (*AccountRepository)(nil)

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	var created *models.Account
	err := r.store.write(ctx, func(d *state) error {
		if _, taken := d.byEmail[account.Email]; taken {
			return common.ErrDuplicateEmail
		}
		now := r.store.now()
		row := &accountRow{seq: d.nextSeq(), account: *account}
		row.account.ID = uuid.NewString()
		row.account.SessionTokens = nil
		if row.account.Role == "" {
			row.account.Role = models.RoleAuthor
		}
		row.account.CreatedAt, row.account.UpdatedAt = now, now

		d.accounts[row.account.ID] = row
		d.byEmail[row.account.Email] = row.account.ID
		created = copyAccount(row.account)
		return nil
	})
	return created, err
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var found *models.Account
	err := r.store.read(ctx, func(d *state) error {
		id, ok := d.byEmail[email]
		if !ok {
			return common.ErrorNotFound
		}
		found = copyAccount(d.accounts[id].account)
		return nil
	})
	return found, err
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var found *models.Account
	err := r.store.read(ctx, func(d *state) error {
		row, ok := d.accounts[id]
		if !ok {
			return common.ErrorNotFound
		}
		found = copyAccount(row.account)
		return nil
	})
	return found, err
}

func (r *AccountRepository) List(ctx context.Context, role models.Role) ([]*models.Account, error) {
	var result []*models.Account
	err := r.store.read(ctx, func(d *state) error {
		rows := make([]*accountRow, 0, len(d.accounts))
		for _, row := range d.accounts {
			if role == "" || row.account.Role == role {
				rows = append(rows, row)
			}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
		for _, row := range rows {
			result = append(result, copyAccount(row.account))
		}
		return nil
	})
	return result, err
}

func (r *AccountRepository) Update(ctx context.Context, id string, upd accounts.Update) (*models.Account, error) {
	var updated *models.Account
	err := r.store.write(ctx, func(d *state) error {
		row, ok := d.accounts[id]
		if !ok {
			return common.ErrorNotFound
		}
		if upd.Name != nil {
			row.account.Name = *upd.Name
		}
		if upd.PasswordHash != nil {
			row.account.PasswordHash = *upd.PasswordHash
		}
		if upd.Role != nil {
			row.account.Role = *upd.Role
		}
		row.account.UpdatedAt = r.store.now()
		updated = copyAccount(row.account)
		return nil
	})
	return updated, err
}

func (r *AccountRepository) Delete(ctx context.Context, id string) (*models.Account, error) {
	var deleted *models.Account
	err := r.store.write(ctx, func(d *state) error {
		row, ok := d.accounts[id]
		if !ok {
			return common.ErrorNotFound
		}
		for _, p := range d.posts {
			if p.post.AuthorID == id {
				return errForeignKey("posts", id)
			}
		}
		delete(d.accounts, id)
		delete(d.byEmail, row.account.Email)
		delete(d.tokens, id)
		deleted = copyAccount(row.account)
		return nil
	})
	return deleted, err
}
