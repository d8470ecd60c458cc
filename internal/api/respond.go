package api

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithRequest(r).WithError(err).Error("failed to write response")
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithRequest(r).WithError(err).Warn("bad request")
	s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithRequest(r).WithError(err).Error("request failed")
	s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
