// Package sessiontokens declares the repository contract for the per-account
// registry of live session tokens and its PostgreSQL implementation.
package sessiontokens

import "context"

// Repository stores issued tokens per account in issuance order. Every method
// is a single statement, so concurrent calls for one account never interleave
// partially.
type Repository interface {
	// Add records token for accountID. Adding a token twice is a no-op.
	Add(ctx context.Context, accountID, token string) error
	// Delete removes token from accountID's set. A missing token is a no-op.
	Delete(ctx context.Context, accountID, token string) error
	// DeleteAll clears every token of accountID.
	DeleteAll(ctx context.Context, accountID string) error
	Exists(ctx context.Context, accountID, token string) (bool, error)
	List(ctx context.Context, accountID string) ([]string, error)
}
