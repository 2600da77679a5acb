package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/proposal"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string                `json:"message"`
	Errors  []proposal.FieldError `json:"errors,omitempty"`
}

// MessageResponse acknowledges an operation with no other result.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeError maps domain errors to status codes. fallback is the message for
// anything unexpected.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var verr *proposal.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Validation error", Errors: verr.Fields})
	case errors.Is(err, proposal.ErrProposalNotFound), errors.Is(err, collaborator.ErrProposalNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, proposal.ErrInvalidInput),
		errors.Is(err, collaborator.ErrInvalidInput),
		errors.Is(err, history.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, "Invalid input")
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
