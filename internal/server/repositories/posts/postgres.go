package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/google/uuid"
)

const postColumns = `id, title, description, image_url, image_key, author_id, created_at, updated_at`

// PostgresRepository implements Repository on the posts table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.ImageKey, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, description, image_url, image_key, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + postColumns

	p, err := scanPost(r.db.QueryRowContext(ctx, query,
		post.Title, post.Description, post.ImageURL, post.ImageKey, post.AuthorID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id`
	return r.list(ctx, query)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	if _, err := uuid.Parse(authorID); err != nil {
		return nil, nil
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, query, authorID)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	query := `
		UPDATE posts
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    image_url = COALESCE($4, image_url),
		    image_key = COALESCE($5, image_key),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns

	return r.getOne(ctx, query, id, patch.Title, patch.Description, patch.ImageURL, patch.ImageKey)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	query := `DELETE FROM posts WHERE id = $1 RETURNING ` + postColumns
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	if _, err := uuid.Parse(authorID); err != nil {
		return nil, nil
	}
	query := `DELETE FROM posts WHERE author_id = $1 RETURNING ` + postColumns
	return r.list(ctx, query, authorID)
}
