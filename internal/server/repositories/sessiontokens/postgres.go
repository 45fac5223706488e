package sessiontokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository on the session_tokens table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, accountID, token string) error {
	query := `
		INSERT INTO session_tokens (account_id, token)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, accountID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID, token string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil
	}
	query := `DELETE FROM session_tokens WHERE account_id = $1 AND token = $2`
	if _, err := r.db.ExecContext(ctx, query, accountID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil
	}
	query := `DELETE FROM session_tokens WHERE account_id = $1`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, accountID, token string) (bool, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return false, nil
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM session_tokens WHERE account_id = $1 AND token = $2
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, accountID, token).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) List(ctx context.Context, accountID string) ([]string, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil, nil
	}
	query := `SELECT token FROM session_tokens WHERE account_id = $1 ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}
