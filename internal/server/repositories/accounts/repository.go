// Package accounts declares the server-side repository contract for account
// records and its PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// Update lists the columns an update may touch. Nil fields are left as is.
type Update struct {
	Name         *string
	PasswordHash *string
	Role         *models.Role
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.PasswordHash == nil && u.Role == nil
}

// Repository defines persistence operations for accounts. Lookups of absent
// rows return common.ErrorNotFound; Create returns common.ErrDuplicateEmail
// when the email is taken.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// List returns accounts with the given role, or all accounts for "".
	List(ctx context.Context, role models.Role) ([]*models.Account, error)
	Update(ctx context.Context, id string, upd Update) (*models.Account, error)
	// Delete removes the account row and returns it as it was.
	Delete(ctx context.Context, id string) (*models.Account, error)
}
