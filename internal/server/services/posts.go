package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

// Upload is an image received with a post.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PostService manages blog posts and their cover images.
type PostService struct {
	repomanager repomanager.RepositoryManager
	images      ImageStore
	imagePrefix string
	timeout     time.Duration
	logger      logging.Logger
}

func NewPostService(m repomanager.RepositoryManager, images ImageStore, imagePrefix string,
	timeout time.Duration, logger logging.Logger) *PostService {
	return &PostService{
		repomanager: m,
		images:      images,
		imagePrefix: imagePrefix,
		timeout:     timeout,
		logger:      logger.With("module", "posts"),
	}
}

func (s *PostService) repo() posts.Repository {
	return s.repomanager.Posts(s.repomanager.Conn())
}

// Create stores a new post by the principal. Authors and admins may post;
// an image is mandatory.
func (s *PostService) Create(ctx context.Context, p *auth.Principal, title, description string, img *Upload) (*models.Post, error) {
	if err := auth.RequireRole(p, models.RoleAuthor, models.RoleAdmin); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := validationError(validation.Errors{
		"title":       validation.Validate(title, validation.Required),
		"description": validation.Validate(description, validation.Required),
	}); err != nil {
		return nil, err
	}
	if img == nil || img.Body == nil {
		return nil, common.ErrImageRequired
	}

	key := NewImageKey(s.imagePrefix, img.Filename)
	url, err := s.images.Put(ctx, key, img.Body, img.Size, img.ContentType)
	if err != nil {
		return nil, err
	}

	bctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	post, err := s.repo().Create(bctx, &models.Post{
		Title:       title,
		Description: description,
		ImageURL:    url,
		ImageKey:    key,
		AuthorID:    p.Account.ID,
	})
	if err != nil {
		s.dropImage(ctx, key)
		return nil, err
	}

	post.Author = p.Account
	s.logger.Info(ctx, "post created", "post_id", post.ID, "author_id", post.AuthorID)
	return post, nil
}

// Get returns one post with its author.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	post, err := s.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns all posts, newest first, with their authors.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	ctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	list, err := s.repo().List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Post{}
	}
	if err := s.attachAuthors(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *PostService) attachAuthors(ctx context.Context, list []*models.Post) error {
	repo := s.repomanager.Accounts(s.repomanager.Conn())
	seen := map[string]*models.Account{}
	for _, post := range list {
		author, ok := seen[post.AuthorID]
		if !ok {
			a, err := repo.GetByID(ctx, post.AuthorID)
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			author = a
			seen[post.AuthorID] = a
		}
		post.Author = author
	}
	return nil
}

// Update changes a post owned by the principal, or any post for an admin.
// Empty title or description keep the current value. A new image replaces
// the old one, which is deleted once the post points at the new one.
func (s *PostService) Update(ctx context.Context, p *auth.Principal, id, title, description string, img *Upload) (*models.Post, error) {
	current, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	var patch models.PostPatch
	if t := strings.TrimSpace(title); t != "" {
		patch.Title = &t
	}
	if d := strings.TrimSpace(description); d != "" {
		patch.Description = &d
	}

	var newKey string
	if img != nil && img.Body != nil {
		newKey = NewImageKey(s.imagePrefix, img.Filename)
		url, err := s.images.Put(ctx, newKey, img.Body, img.Size, img.ContentType)
		if err != nil {
			return nil, err
		}
		patch.ImageURL, patch.ImageKey = &url, &newKey
	}

	bctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	post, err := s.repo().Update(bctx, id, patch)
	if err != nil {
		if newKey != "" {
			s.dropImage(ctx, newKey)
		}
		return nil, err
	}

	if newKey != "" && current.ImageKey != "" {
		s.dropImage(ctx, current.ImageKey)
	}
	post.Author = current.Author
	return post, nil
}

// Delete removes a post owned by the principal, or any post for an admin,
// and then its image.
func (s *PostService) Delete(ctx context.Context, p *auth.Principal, id string) (*models.Post, error) {
	current, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	bctx, cancel := dbx.Bound(ctx, s.timeout)
	defer cancel()

	post, err := s.repo().Delete(bctx, id)
	if err != nil {
		return nil, err
	}

	s.dropImage(ctx, post.ImageKey)
	post.Author = current.Author
	s.logger.Info(ctx, "post deleted", "post_id", post.ID, "by", p.Account.ID)
	return post, nil
}

// owned loads the post and checks that p may modify it.
func (s *PostService) owned(ctx context.Context, p *auth.Principal, id string) (*models.Post, error) {
	if err := auth.RequireRole(p, models.RoleAuthor, models.RoleAdmin); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrRole(p, post.AuthorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "image delete failed", "key", key, "error", err)
	}
}
