package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/botwire/go-wa-gateway/flows"
)

type createFlowRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateFlowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFlowRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		flow := &flows.Flow{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Description: req.Description,
			Available:   true,
		}
		if err := s.flows.Upsert(flow); err != nil {
			s.log.Err(err).Msg("Failed to store flow")
			writeError(w, http.StatusInternalServerError, "failed to create flow")
			return
		}
		writeJSON(w, http.StatusCreated, flow)
	}
}

func (s *Server) ListFlowsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.flows.List(0, 0)
		if err != nil {
			s.log.Err(err).Msg("Failed to list flows")
			writeError(w, http.StatusInternalServerError, "failed to list flows")
			return
		}
		if list == nil {
			list = []*flows.Flow{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
