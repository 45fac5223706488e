package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
)

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorStatus maps err onto the status and public message of the response.
// Gate rejections all share one message so clients cannot tell which check
// failed.
func errorStatus(err error) (int, errorResponse) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusBadRequest, errorResponse{Message: "User with this email already exists."}
	case errors.Is(err, common.ErrImageRequired):
		return http.StatusBadRequest, errorResponse{Message: "Image is required"}
	case errors.Is(err, common.ErrorValidation) && errors.As(err, &verrs):
		return http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: verrs}
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	case errors.Is(err, common.ErrInvalidUpdate):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid update."}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errorResponse{Message: "Unauthorized"}
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "Forbidden"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Message: "Not found."}
	default:
		return http.StatusInternalServerError, errorResponse{Message: "Server error"}
	}
}

// writeError sends the mapped error response. Internal errors are logged
// with their detail, which never reaches the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}
