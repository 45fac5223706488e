package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	authors, err := s.accounts.ListAccounts(r.Context(), models.RoleAuthor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "authors": authors})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	author, err := s.accounts.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "author": author})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	author, err := s.accounts.UpdateAccount(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Author updated successfully.",
		"author":  author,
	})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	author, err := s.accounts.DeleteAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Author deleted successfully",
		"author":  author,
	})
}
