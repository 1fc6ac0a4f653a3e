package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/identity"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/roadmap"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/store"
)

// RegisterRoadmapRoutes wires the roadmap visualization endpoints.
func (h *Handler) RegisterRoadmapRoutes(r chi.Router) {
	r.Get("/roadmaps", h.handleListRoadmaps)
	r.Post("/roadmaps", h.handleCreateRoadmap)
	r.Get("/roadmaps/{id}", h.handleGetRoadmap)
	r.Post("/roadmaps/{id}/lines", h.handleRoadmapLines)
}

// roadmapView augments a stored roadmap with the derived per-node lock
// states the node graph renders.
type roadmapView struct {
	*domain.Roadmap
	Locked []bool `json:"locked"`
}

func (h *Handler) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	roadmaps, err := h.repo.ListRoadmaps(r.Context(), userID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list roadmaps")
		return
	}

	views := make([]roadmapView, 0, len(roadmaps))
	for _, rm := range roadmaps {
		views = append(views, roadmapView{Roadmap: rm, Locked: roadmap.LockStates(rm.Progresses())})
	}
	JSON(w, http.StatusOK, views)
}

// handleCreateRoadmap saves the active conversation's results as a
// roadmap linked to its session.
func (h *Handler) handleCreateRoadmap(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rm, err := h.chatSvc.SaveRoadmap(r.Context(), userID, payload.Name)
	if err != nil {
		Error(w, http.StatusConflict, "no saved results to build a roadmap from")
		return
	}
	JSON(w, http.StatusCreated, roadmapView{Roadmap: rm, Locked: roadmap.LockStates(rm.Progresses())})
}

func (h *Handler) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid roadmap id")
		return
	}

	rm, err := h.repo.GetRoadmap(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "roadmap not found")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to load roadmap")
		return
	}
	JSON(w, http.StatusOK, roadmapView{Roadmap: rm, Locked: roadmap.LockStates(rm.Progresses())})
}

// handleRoadmapLines derives connecting-line endpoints from the node
// geometry the client measured. Lines are ephemeral: the client calls
// again after every layout-affecting event.
func (h *Handler) handleRoadmapLines(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid roadmap id")
		return
	}

	var payload struct {
		Container roadmap.Rect   `json:"container"`
		Nodes     []roadmap.Rect `json:"nodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rm, err := h.repo.GetRoadmap(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "roadmap not found")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to load roadmap")
		return
	}

	lines := roadmap.Lines(payload.Container, payload.Nodes, rm.Progresses())
	if lines == nil {
		lines = []roadmap.Line{}
	}
	JSON(w, http.StatusOK, lines)
}
