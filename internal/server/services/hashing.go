package services

// PasswordHasher hashes and checks passwords. Verify reports a mismatch as
// (false, nil); an error means the hash could not be checked at all.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) (bool, error)
}

// TokenIssuer mints and verifies session tokens.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
	Verify(token string) (string, error)
}
