package http

import (
	"net/http"

	"tally/internal/category"
	"tally/internal/core"
)

type categoryRequest struct {
	Kind  core.Kind `json:"kind"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		kind, ok := parseKind(r)
		if !ok {
			badRequest(w, "kind must be expense or income")
			return
		}
		views, err := s.categories.List(r.Context(), s.ownerID, kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if views == nil {
			views = []category.View{}
		}
		respondJSON(w, http.StatusOK, map[string][]category.View{"categories": views})

	case http.MethodPost:
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		id, err := s.categories.Create(r.Context(), core.Category{
			OwnerID: s.ownerID,
			Kind:    req.Kind,
			Name:    req.Name,
			Icon:    req.Icon,
			Color:   req.Color,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAnalytics()
		respondJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/categories/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		err := s.categories.Update(r.Context(), core.Category{
			ID:      id,
			OwnerID: s.ownerID,
			Kind:    req.Kind,
			Name:    req.Name,
			Icon:    req.Icon,
			Color:   req.Color,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
	case http.MethodDelete:
		if err := s.categories.Delete(r.Context(), s.ownerID, id); err != nil {
			writeError(w, r, err)
			return
		}
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		return
	}

	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}
