package httpapi

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is the room left for text fields next to the image.
const multipartOverhead = 1 << 20

type postForm struct {
	title       string
	description string
	image       *services.Upload
	file        multipart.File
}

func (f *postForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

// readPostForm accepts multipart/form-data with an optional "image" part, or
// a JSON body with title and description only.
func (s *Server) readPostForm(w http.ResponseWriter, r *http.Request) (*postForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			return nil, err
		}
		return &postForm{title: body.Title, description: body.Description}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(s.opts.MaxImageSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrorValidation, s.opts.MaxImageSize)
		}
		return nil, fmt.Errorf("%w: malformed multipart body", common.ErrorValidation)
	}

	form := &postForm{
		title:       r.FormValue("title"),
		description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return nil, fmt.Errorf("%w: unreadable image", common.ErrorValidation)
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		_ = file.Close()
		return nil, fmt.Errorf("%w: image must be an image file", common.ErrorValidation)
	}
	if header.Size > s.opts.MaxImageSize {
		_ = file.Close()
		return nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrorValidation, s.opts.MaxImageSize)
	}

	form.file = file
	form.image = &services.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}
	return form, nil
}

func (s *Server) createBlog(w http.ResponseWriter, r *http.Request) {
	form, err := s.readPostForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer form.close()

	blog, err := s.posts.Create(r.Context(), principal(r), form.title, form.description, form.image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "blog": blog})
}

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.posts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "blogs": blogs})
}

func (s *Server) getBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := s.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "blog": blog})
}

func (s *Server) updateBlog(w http.ResponseWriter, r *http.Request) {
	form, err := s.readPostForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer form.close()

	blog, err := s.posts.Update(r.Context(), principal(r), chi.URLParam(r, "id"), form.title, form.description, form.image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "blog": blog})
}

func (s *Server) deleteBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := s.posts.Delete(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Blog post successfully deleted",
		"blog":    blog,
	})
}
