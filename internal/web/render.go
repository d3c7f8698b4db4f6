package web

import (
	"encoding/json"
	"net/http"

	"github.com/edvart/gamers-league/internal/league"
)

type errorResponse struct {
	Error string           `json:"error"`
	Code  league.ErrorKind `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError maps domain error kinds onto HTTP statuses; anything without a
// kind is an unexpected store failure and stays opaque to the caller.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := league.KindOf(err)
	switch kind {
	case league.KindNotFound:
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: kind})
	case league.KindInvalidID, league.KindInvalidReference, league.KindConstraintViolation:
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: kind})
	default:
		s.log.WithError(err).Error("internal error")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decode(r *http.Request, dest any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}
