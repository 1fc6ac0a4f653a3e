// Package api provides HTTP handlers for the SkillsNavigator API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/chat"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/config"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/search"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/store"
)

// Handler provides common handler utilities and dependencies.
type Handler struct {
	repo     store.Repository
	chatSvc  *chat.Service
	searcher search.Searcher
	cfg      *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, chatSvc *chat.Service, searcher search.Searcher, cfg *config.Config) *Handler {
	return &Handler{
		repo:     repo,
		chatSvc:  chatSvc,
		searcher: searcher,
		cfg:      cfg,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
