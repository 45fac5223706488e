package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// GateState is where a request stands in the authorization gate.
type GateState int

const (
	GateUnauthenticated GateState = iota
	GateAuthenticated
	GateRejected
)

func (s GateState) String() string {
	switch s {
	case GateUnauthenticated:
		return "unauthenticated"
	case GateAuthenticated:
		return "authenticated"
	case GateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("GateState(%d)", int(s))
	}
}

// GateResult is the decision for one request. Err is set when State is
// GateRejected: one of the common.ErrorUnauthorized reasons, or an
// infrastructure error from the store.
type GateResult struct {
	State     GateState
	Principal *auth.Principal
	Err       error
}

// RejectionReason names a gate rejection for logs and metrics.
func RejectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrMissingToken):
		return "missing_token"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, common.ErrRevokedToken):
		return "revoked_token"
	default:
		return "store_error"
	}
}

// AuthService implements sign-up, login, logout and the per-request
// authorization gate on top of the credential store and session registry.
type AuthService struct {
	accounts *AccountService
	sessions *SessionRegistry
	tokens   TokenIssuer
	logger   logging.Logger
}

func NewAuthService(accounts *AccountService, sessions *SessionRegistry, tokens TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger.With("module", "auth"),
	}
}

// SignUp creates an account and opens its first session.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*models.Account, string, error) {
	account, err := s.accounts.CreateAccount(ctx, name, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.openSession(ctx, account.ID)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Login checks the credentials and opens a new session alongside any existing
// ones. An unknown email and a wrong password both yield
// common.ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrBadCredentials
		}
		return nil, "", err
	}

	ok, err := s.accounts.VerifyPassword(account, password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", common.ErrBadCredentials
	}

	token, err := s.openSession(ctx, account.ID)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *AuthService) openSession(ctx context.Context, accountID string) (string, error) {
	token, err := s.tokens.Issue(accountID)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	if err := s.sessions.Register(ctx, accountID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Logout ends the session of the presented token only.
func (s *AuthService) Logout(ctx context.Context, p *auth.Principal) error {
	if p == nil || p.Account == nil {
		return common.ErrorUnauthorized
	}
	return s.sessions.RevokeOne(ctx, p.Account.ID, p.Token)
}

// LogoutAll ends every session of the principal's account, including the
// current one.
func (s *AuthService) LogoutAll(ctx context.Context, p *auth.Principal) error {
	if p == nil || p.Account == nil {
		return common.ErrorUnauthorized
	}
	return s.sessions.RevokeAll(ctx, p.Account.ID)
}

// Authenticate verifies token and resolves its live principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	accountID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownAccount
		}
		return nil, err
	}

	live, err := s.sessions.IsLive(ctx, account.ID, token)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, common.ErrRevokedToken
	}

	return &auth.Principal{Account: account, Token: token}, nil
}

// Gate runs the authorization state machine for one request given the value
// of its Authorization header.
func (s *AuthService) Gate(ctx context.Context, header string) GateResult {
	token, ok := BearerToken(header)
	if !ok {
		return GateResult{State: GateRejected, Err: common.ErrMissingToken}
	}
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return GateResult{State: GateRejected, Err: err}
	}
	return GateResult{State: GateAuthenticated, Principal: p}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
