package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

// Keys an account patch may carry.
const (
	PatchName     = "name"
	PatchPassword = "password"
)

// AccountService is the credential store: it owns account records and is the
// only place password hashes are produced or read.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	images      ImageStore
	timeout     time.Duration
	logger      logging.Logger
}

func NewAccountService(m repomanager.RepositoryManager, hasher PasswordHasher, images ImageStore,
	timeout time.Duration, logger logging.Logger) *AccountService {
	return &AccountService{
		repomanager: m,
		hasher:      hasher,
		images:      images,
		timeout:     timeout,
		logger:      logger.With("module", "accounts"),
	}
}

func (s *AccountService) repo() accounts.Repository {
	return s.repomanager.Accounts(s.repomanager.Conn())
}

// CreateAccount validates the input, hashes the password and stores a new
// author account.
func (s *AccountService) CreateAccount(ctx context.Context, name, email, rawPassword string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if err := validationError(validation.Errors{
		"name":     validation.Validate(name, nameRules...),
		"email":    validation.Validate(email, emailRules...),
		"password": validation.Validate(rawPassword, passwordRules...),
	}); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	if _, err := s.repo().GetByEmail(ctx, email); err == nil {
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	account, err := s.repo().Create(ctx, &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAuthor,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account created", "account_id", account.ID)
	return account, nil
}

func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()
	return s.repo().GetByEmail(ctx, normalizeEmail(email))
}

func (s *AccountService) FindByID(ctx context.Context, id string) (*models.Account, error) {
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()
	return s.repo().GetByID(ctx, id)
}

// VerifyPassword checks rawPassword against the account's stored hash.
func (s *AccountService) VerifyPassword(account *models.Account, rawPassword string) (bool, error) {
	return s.hasher.Verify(rawPassword, account.PasswordHash)
}

// UpdateAccount applies patch to the account. Only name and password may be
// changed; a patch naming any other key is rejected as a whole with
// common.ErrInvalidUpdate before anything is written. A new password is
// hashed; an unchanged one is left alone.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, patch map[string]any) (*models.Account, error) {
	for key := range patch {
		if key != PatchName && key != PatchPassword {
			return nil, common.ErrInvalidUpdate
		}
	}

	var upd accounts.Update
	errs := validation.Errors{}

	if v, ok := patch[PatchName]; ok {
		name, isString := v.(string)
		if !isString {
			errs[PatchName] = errors.New("must be a string")
		} else {
			name = strings.TrimSpace(name)
			errs[PatchName] = validation.Validate(name, nameRules...)
			upd.Name = &name
		}
	}

	var rawPassword *string
	if v, ok := patch[PatchPassword]; ok {
		pw, isString := v.(string)
		if !isString {
			errs[PatchPassword] = errors.New("must be a string")
		} else {
			errs[PatchPassword] = validation.Validate(pw, passwordRules...)
			rawPassword = &pw
		}
	}

	if err := validationError(errs); err != nil {
		return nil, err
	}

	if rawPassword != nil {
		hash, err := s.hasher.Hash(*rawPassword)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	if upd.Empty() {
		return s.repo().GetByID(ctx, id)
	}
	return s.repo().Update(ctx, id, upd)
}

// GrantRole sets the account's role.
func (s *AccountService) GrantRole(ctx context.Context, id string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrorValidation, role)
	}
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()
	return s.repo().Update(ctx, id, accounts.Update{Role: &role})
}

// DeleteAccount removes the account together with every post it authored in
// one transaction. Its session tokens go with the account row. Images of the
// removed posts are deleted after commit; failures there are only logged.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) (*models.Account, error) {
	var (
		deleted *models.Account
		removed []*models.Post
	)

	bctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	err := s.repomanager.WithTx(bctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		removed, err = s.repomanager.Posts(tx).DeleteByAuthor(ctx, id)
		if err != nil {
			return err
		}
		deleted, err = s.repomanager.Accounts(tx).Delete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, p := range removed {
		s.dropImage(ctx, p)
	}

	s.logger.Info(ctx, "account deleted", "account_id", id, "posts", len(removed))
	return deleted, nil
}

func (s *AccountService) dropImage(ctx context.Context, p *models.Post) {
	if p.ImageKey == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, p.ImageKey); err != nil {
		s.logger.Warn(ctx, "image delete failed", "post_id", p.ID, "key", p.ImageKey, "error", err)
	}
}

// ListAccounts returns accounts with the given role ("" for all), each with
// the posts it authored.
func (s *AccountService) ListAccounts(ctx context.Context, role models.Role) ([]*models.AccountWithPosts, error) {
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	list, err := s.repo().List(ctx, role)
	if err != nil {
		return nil, err
	}

	result := make([]*models.AccountWithPosts, 0, len(list))
	for _, a := range list {
		withPosts, err := s.attachPosts(ctx, a)
		if err != nil {
			return nil, err
		}
		result = append(result, withPosts)
	}
	return result, nil
}

// GetAccount returns one account with the posts it authored.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.AccountWithPosts, error) {
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	a, err := s.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachPosts(ctx, a)
}

func (s *AccountService) attachPosts(ctx context.Context, a *models.Account) (*models.AccountWithPosts, error) {
	posts, err := s.repomanager.Posts(s.repomanager.Conn()).ListByAuthor(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &models.AccountWithPosts{Account: a, Blogs: posts}, nil
}
