package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/chat"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/identity"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/reveal"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/store"
)

// RegisterChatRoutes wires the conversation endpoints.
func (h *Handler) RegisterChatRoutes(r chi.Router) {
	r.Get("/chats", h.handleListChats)
	r.Post("/chats", h.handleNewChat)
	r.Get("/chats/current", h.handleCurrentChat)
	r.Post("/chats/submit", h.handleSubmit)
	r.Post("/chats/pending", h.handleSetPending)
	r.Get("/chats/{id}", h.handleSelectChat)
	r.Post("/chats/{id}/rename", h.handleRenameChat)
	r.Post("/chats/{id}/messages", h.handleSaveMessage)
}

// conversationView is the snapshot the frontend renders, with the
// placeholder padding the results row needs for layout stability.
type conversationView struct {
	chat.Snapshot
	Placeholders int `json:"placeholders"`
}

func view(snap chat.Snapshot) conversationView {
	return conversationView{
		Snapshot:     snap,
		Placeholders: reveal.Placeholders(len(snap.Courses)),
	}
}

// handleListChats returns the user's sessions, newest id first.
func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	sessions, err := h.chatSvc.ListSessions(r.Context(), userID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	if sessions == nil {
		sessions = []*domain.ChatSession{}
	}
	JSON(w, http.StatusOK, sessions)
}

// handleNewChat opens a fresh draft conversation. A pending landing-page
// query, when present, is consumed and submitted as the first answer.
func (h *Handler) handleNewChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	snap := h.chatSvc.StartDraft(r.Context(), userID)
	if text, ok := h.chatSvc.ConsumePending(userID); ok {
		if out, accepted := h.chatSvc.Submit(r.Context(), userID, text); accepted {
			snap = out.Snapshot
		}
	}
	JSON(w, http.StatusCreated, view(snap))
}

// handleCurrentChat returns the active conversation without switching it.
func (h *Handler) handleCurrentChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	snap, ok := h.chatSvc.Current(userID)
	if !ok {
		Error(w, http.StatusNotFound, "no active conversation")
		return
	}
	JSON(w, http.StatusOK, view(snap))
}

// handleSelectChat switches the active conversation to a stored session.
func (h *Handler) handleSelectChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	snap, err := h.chatSvc.Select(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "chat not found")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to load chat")
		return
	}
	JSON(w, http.StatusOK, view(snap))
}

// handleSubmit drives the active conversation one step. When the final
// slot fills, the course search runs within this request; the paced
// WebSocket stream is the animated alternative.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, accepted := h.chatSvc.Submit(r.Context(), userID, payload.Text)
	if !accepted {
		// Empty input and terminal-state input are silent no-ops; the
		// current view is returned unchanged.
		snap, ok := h.chatSvc.Current(userID)
		if !ok {
			Error(w, http.StatusNotFound, "no active conversation")
			return
		}
		JSON(w, http.StatusOK, view(snap))
		return
	}

	snap := out.Snapshot
	if out.SearchStarted {
		var err error
		snap, err = h.chatSvc.RunSearch(r.Context(), userID)
		if err != nil && !errors.Is(err, chat.ErrSearchInFlight) {
			Error(w, http.StatusInternalServerError, "failed to run search")
			return
		}
	}
	JSON(w, http.StatusOK, view(snap))
}

// handleRenameChat updates a session's display name.
func (h *Handler) handleRenameChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chatSvc.Rename(r.Context(), userID, id, payload.Name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "chat not found")
			return
		}
		Error(w, http.StatusBadRequest, "failed to rename chat")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

// handleSaveMessage persists one message at an explicit 1-based position,
// the durable-storage contract the optimistic client append forwards to.
func (h *Handler) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var payload struct {
		Text     string `json:"text"`
		IsUser   bool   `json:"isUser"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Position < 1 {
		Error(w, http.StatusBadRequest, "position must be >= 1")
		return
	}

	// Ownership check before the write.
	if _, err := h.repo.GetSession(r.Context(), userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "chat not found")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to load chat")
		return
	}

	msg := domain.Message{Text: payload.Text, IsUser: payload.IsUser}
	if err := h.repo.AppendMessage(r.Context(), id, msg, payload.Position); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	JSON(w, http.StatusAccepted, map[string]string{"status": "saved"})
}

// handleSetPending stores the one-shot landing-page query that carries a
// just-typed message into the chat view across navigation.
func (h *Handler) handleSetPending(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.chatSvc.SetPending(userID, payload.Text)
	JSON(w, http.StatusAccepted, map[string]string{"status": "stored"})
}
