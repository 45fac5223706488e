// Package posts declares the repository contract for blog posts and its
// PostgreSQL implementation.
package posts

import (
	"context"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// Repository persists posts. Reads return posts without Author populated;
// services attach it.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id string) (*models.Post, error)
	// DeleteByAuthor removes every post of authorID and returns them.
	DeleteByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
}
