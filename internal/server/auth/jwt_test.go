package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func newIssuer(t *testing.T, secret string) *TokenIssuer {
	t.Helper()
	i, err := NewTokenIssuer([]byte(secret))
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	return i
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "super-secret")
	accountID := "account-123"

	tok, err := i.Issue(accountID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := i.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != accountID {
		t.Fatalf("account id mismatch: got %q want %q", got, accountID)
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "secret")
	fixed := time.Unix(1_700_000_000, 0)
	i.now = func() time.Time { return fixed }

	a, err := i.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := i.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two logins in the same second must not share a token")
	}
}

func TestIssue_HasNoExpiry(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "secret")
	i.now = func() time.Time { return time.Now().Add(-10 * 365 * 24 * time.Hour) }

	tok, err := i.Issue("old-account")
	if err != nil {
		t.Fatal(err)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("unexpected exp claim: %v", claims.ExpiresAt)
	}
	if _, err := i.Verify(tok); err != nil {
		t.Fatalf("old token must still verify: %v", err)
	}
}

func TestIssue_EmptyAccount(t *testing.T) {
	t.Parallel()

	if _, err := newIssuer(t, "secret").Issue(""); err == nil {
		t.Fatal("expected error for empty account id")
	}
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer(nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewTokenIssuer_CopiesSecret(t *testing.T) {
	t.Parallel()

	secret := []byte("mutable")
	i, err := NewTokenIssuer(secret)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := i.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}

	secret[0] = 'X'
	if _, err := i.Verify(tok); err != nil {
		t.Fatalf("issuer must not observe caller mutations: %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newIssuer(t, "right-secret").Issue("u2")
	if err != nil {
		t.Fatal(err)
	}

	_, err = newIssuer(t, "wrong-secret").Verify(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_MutatedCharacter(t *testing.T) {
	t.Parallel()

	i := newIssuer(t, "secret")
	tok, err := i.Issue("u3")
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}

	mutate := func(s string, pos int) string {
		b := []byte(s)
		if b[pos] == 'A' {
			b[pos] = 'B'
		} else {
			b[pos] = 'A'
		}
		return string(b)
	}

	for name, bad := range map[string]string{
		"payload":   parts[0] + "." + mutate(parts[1], len(parts[1])/2) + "." + parts[2],
		"signature": parts[0] + "." + parts[1] + "." + mutate(parts[2], len(parts[2])/2),
		"header":    mutate(parts[0], 1) + "." + parts[1] + "." + parts[2],
	} {
		if _, err := i.Verify(bad); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("%s mutation: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{AccountID: "u4"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := newIssuer(t, "secret").Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}
}

func TestVerify_MissingAccountID(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := newIssuer(t, "secret").Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_MalformedString(t *testing.T) {
	t.Parallel()

	if _, err := newIssuer(t, "k").Verify("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
