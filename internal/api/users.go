package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/identity"
)

// RegisterUserRoutes wires the identity endpoint.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Get("/users/me", h.handleCurrentUser)
}

// handleCurrentUser returns the display profile for the request's
// identity. Unauthenticated visitors get a guest profile, never a 401.
func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, identity.ProfileFromContext(r.Context()))
}
