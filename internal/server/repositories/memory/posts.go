package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/google/uuid"
)

// PostRepository implements posts.Repository.
type PostRepository struct {
	store *Store
}

var _ posts.Repository = (*PostRepository)(nil)

func NewPostRepository(store *Store) *PostRepository {
	return &PostRepository{store: store}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	var created *models.Post
	err := r.store.write(ctx, func(d *state) error {
		if _, ok := d.accounts[post.AuthorID]; !ok {
			return errForeignKey("posts", post.AuthorID)
		}
		now := r.store.now()
		row := &postRow{seq: d.nextSeq(), post: *post}
		row.post.ID = uuid.NewString()
		row.post.Author = nil
		row.post.CreatedAt, row.post.UpdatedAt = now, now
		d.posts[row.post.ID] = row
		created = copyPost(row.post)
		return nil
	})
	return created, err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var found *models.Post
	err := r.store.read(ctx, func(d *state) error {
		row, ok := d.posts[id]
		if !ok {
			return common.ErrorNotFound
		}
		found = copyPost(row.post)
		return nil
	})
	return found, err
}

// newestFirst collects the posts accepted by keep, ordered like the SQL
// implementation orders by created_at DESC.
func newestFirst(d *state, keep func(*models.Post) bool) []*postRow {
	rows := make([]*postRow, 0)
	for _, row := range d.posts {
		if keep(&row.post) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	return rows
}

func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	var result []*models.Post
	err := r.store.read(ctx, func(d *state) error {
		for _, row := range newestFirst(d, func(*models.Post) bool { return true }) {
			result = append(result, copyPost(row.post))
		}
		return nil
	})
	return result, err
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	var result []*models.Post
	err := r.store.read(ctx, func(d *state) error {
		for _, row := range newestFirst(d, func(p *models.Post) bool { return p.AuthorID == authorID }) {
			result = append(result, copyPost(row.post))
		}
		return nil
	})
	return result, err
}

func (r *PostRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	var updated *models.Post
	err := r.store.write(ctx, func(d *state) error {
		row, ok := d.posts[id]
		if !ok {
			return common.ErrorNotFound
		}
		if patch.Title != nil {
			row.post.Title = *patch.Title
		}
		if patch.Description != nil {
			row.post.Description = *patch.Description
		}
		if patch.ImageURL != nil {
			row.post.ImageURL = *patch.ImageURL
		}
		if patch.ImageKey != nil {
			row.post.ImageKey = *patch.ImageKey
		}
		row.post.UpdatedAt = r.store.now()
		updated = copyPost(row.post)
		return nil
	})
	return updated, err
}

func (r *PostRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	var deleted *models.Post
	err := r.store.write(ctx, func(d *state) error {
		row, ok := d.posts[id]
		if !ok {
			return common.ErrorNotFound
		}
		delete(d.posts, id)
		deleted = copyPost(row.post)
		return nil
	})
	return deleted, err
}

func (r *PostRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	var deleted []*models.Post
	err := r.store.write(ctx, func(d *state) error {
		for _, row := range newestFirst(d, func(p *models.Post) bool { return p.AuthorID == authorID }) {
			delete(d.posts, row.post.ID)
			deleted = append(deleted, copyPost(row.post))
		}
		return nil
	})
	return deleted, err
}
