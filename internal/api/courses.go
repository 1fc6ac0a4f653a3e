package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

// RegisterCourseRoutes wires the catalog pass-through endpoints.
func (h *Handler) RegisterCourseRoutes(r chi.Router) {
	r.Post("/courses/search", h.handleSearchCourses)
	r.Get("/courses/popular", h.handlePopularCourses)
}

// handleSearchCourses runs a one-off catalog search outside any
// conversation.
func (h *Handler) handleSearchCourses(w http.ResponseWriter, r *http.Request) {
	var payload domain.Answers
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	courses, err := h.searcher.Search(r.Context(), payload, 0)
	if err != nil {
		Error(w, http.StatusBadGateway, "course search failed")
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	JSON(w, http.StatusOK, courses)
}

// handlePopularCourses returns the catalog's popular selection for the
// landing page.
func (h *Handler) handlePopularCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.searcher.Popular(r.Context())
	if err != nil {
		Error(w, http.StatusBadGateway, "failed to fetch popular courses")
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	JSON(w, http.StatusOK, courses)
}
