package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/sessiontokens"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	rm       repomanager.RepositoryManager
	images   *MemoryImageStore
	issuer   *auth.TokenIssuer
	accounts *AccountService
	sessions *SessionRegistry
	auth     *AuthService
	posts    *PostService
}

func newTestEnvWith(t *testing.T, rm repomanager.RepositoryManager) *testEnv {
	t.Helper()
	hasher, err := auth.NewBcryptHasher(4)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer([]byte("test-secret"))
	require.NoError(t, err)

	images := NewMemoryImageStore("http://images.local/blog")
	logger := logging.Nop()

	accounts := NewAccountService(rm, hasher, images, time.Second, logger)
	sessions := NewSessionRegistry(rm, time.Second)
	return &testEnv{
		rm:       rm,
		images:   images,
		issuer:   issuer,
		accounts: accounts,
		sessions: sessions,
		auth:     NewAuthService(accounts, sessions, issuer, logger),
		posts:    NewPostService(rm, images, "blog-images", time.Second, logger),
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, repomanager.NewInMemoryRepositoryManager())
}

// signUp registers an account and returns its live principal.
func (e *testEnv) signUp(t *testing.T, name, email string) *auth.Principal {
	t.Helper()
	a, token, err := e.auth.SignUp(context.Background(), name, email, "secret1")
	require.NoError(t, err)
	return &auth.Principal{Account: a, Token: token}
}

func (e *testEnv) admin(t *testing.T, name, email string) *auth.Principal {
	t.Helper()
	p := e.signUp(t, name, email)
	a, err := e.accounts.GrantRole(context.Background(), p.Account.ID, models.RoleAdmin)
	require.NoError(t, err)
	p.Account = a
	return p
}

func (e *testEnv) post(t *testing.T, p *auth.Principal, title string) *models.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), p, title, "body of "+title, image("cover.png"))
	require.NoError(t, err)
	return post
}

func image(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Size: 4, Body: strings.NewReader("\x89PNG")}
}

// failingManager serves accounts and posts from memory but fails every
// session token operation.
type failingManager struct {
	*repomanager.InMemoryRepositoryManager
	err error
}

func (m failingManager) SessionTokens(dbx.DBTX) sessiontokens.Repository {
	return failingTokens{err: m.err}
}

type failingTokens struct{ err error }

func (f failingTokens) Add(context.Context, string, string) error    { return f.err }
func (f failingTokens) Delete(context.Context, string, string) error { return f.err }
func (f failingTokens) DeleteAll(context.Context, string) error      { return f.err }
func (f failingTokens) Exists(context.Context, string, string) (bool, error) {
	return false, f.err
}
func (f failingTokens) List(context.Context, string) ([]string, error) { return nil, f.err }

type failingImages struct{}

func (failingImages) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", errors.New("object storage unreachable")
}

func (failingImages) Delete(context.Context, string) error {
	return errors.New("object storage unreachable")
}
