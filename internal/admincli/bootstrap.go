// Package admincli implements the operator flow that promotes an account to
// the admin role, creating the account first when it does not exist.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
)

type Bootstrapper struct {
	accounts *services.AccountService
	reader   *bufio.Reader
	out      io.Writer
}

func NewBootstrapper(accounts *services.AccountService, in io.Reader, out io.Writer) *Bootstrapper {
	return &Bootstrapper{accounts: accounts, reader: bufio.NewReader(in), out: out}
}

// Run asks for an email, creates the account when it is unknown and grants it
// the admin role. Running it again for the same email is harmless.
func (b *Bootstrapper) Run(ctx context.Context) (*models.Account, error) {
	email, err := GetSimpleText(b.reader, "Email", b.out)
	if err != nil {
		return nil, fmt.Errorf("read email: %w", err)
	}

	account, err := b.accounts.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		account, err = b.create(ctx, email)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		fmt.Fprintf(b.out, "Account %s already exists\n", account.Email)
	}

	if account.Role == models.RoleAdmin {
		fmt.Fprintf(b.out, "%s is already an admin\n", account.Email)
		return account, nil
	}

	account, err = b.accounts.GrantRole(ctx, account.ID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(b.out, "%s is now an admin\n", account.Email)
	return account, nil
}

func (b *Bootstrapper) create(ctx context.Context, email string) (*models.Account, error) {
	name, err := GetSimpleText(b.reader, "Name", b.out)
	if err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}
	pw, err := GetPassword(b.out)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer wipe(pw)

	account, err := b.accounts.CreateAccount(ctx, name, email, string(pw))
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(b.out, "Created account %s\n", account.Email)
	return account, nil
}
