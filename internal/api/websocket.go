package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/chat"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/identity"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/reveal"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/roadmap"
)

// WebSocketHandler streams one user's conversation with real-time
// pacing: canned questions arrive after the question delay, search
// results reveal one by one at the reveal cadence, and viewport events
// drive debounced roadmap line recomputation.
type WebSocketHandler struct {
	base          *Handler
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates the conversation stream handler.
func NewWebSocketHandler(base *Handler, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{base: base, allowedOrigin: allowedOrigin, isDev: isDev}
}

// wsInbound is a client-to-server stream message.
type wsInbound struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ChatID    int            `json:"chatId,omitempty"`
	RoadmapID int            `json:"roadmapId,omitempty"`
	Container roadmap.Rect   `json:"container,omitempty"`
	Nodes     []roadmap.Rect `json:"nodes,omitempty"`
}

// wsOutbound is a server-to-client stream event.
type wsOutbound struct {
	Type         string          `json:"type"`
	Message      *domain.Message `json:"message,omitempty"`
	Snapshot     *chat.Snapshot  `json:"snapshot,omitempty"`
	Course       *domain.Course  `json:"course,omitempty"`
	Shown        int             `json:"shown,omitempty"`
	Placeholders int             `json:"placeholders,omitempty"`
	Lines        []roadmap.Line  `json:"lines,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// conn serializes writes to one WebSocket connection.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(ctx context.Context, event wsOutbound) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal stream event", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		if ctx.Err() == nil {
			slog.Debug("WebSocket write error", "error", err)
		}
	}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	slog.Info("Conversation stream request", "user_id", userID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{ws: ws}
	scheduler := reveal.New(h.base.cfg.RevealInterval)
	defer scheduler.Stop()
	debouncer := roadmap.NewDebouncer(roadmap.RecalcDelay)
	defer debouncer.Stop()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return
			}
			slog.Debug("WebSocket read error", "error", err, "user_id", userID)
			return
		}

		var msg wsInbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(ctx, wsOutbound{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case "submit":
			h.handleStreamSubmit(ctx, c, scheduler, userID, msg.Text)
		case "select":
			snap, err := h.base.chatSvc.Select(ctx, userID, msg.ChatID)
			if err != nil {
				c.send(ctx, wsOutbound{Type: "error", Error: "chat not found"})
				continue
			}
			scheduler.Stop()
			c.send(ctx, wsOutbound{Type: "snapshot", Snapshot: &snap})
		case "new":
			snap := h.base.chatSvc.StartDraft(ctx, userID)
			if text, ok := h.base.chatSvc.ConsumePending(userID); ok {
				if out, accepted := h.base.chatSvc.Submit(ctx, userID, text); accepted {
					snap = out.Snapshot
				}
			}
			scheduler.Stop()
			c.send(ctx, wsOutbound{Type: "snapshot", Snapshot: &snap})
		case "viewport":
			h.handleViewport(ctx, c, debouncer, userID, msg)
		default:
			c.send(ctx, wsOutbound{Type: "error", Error: "unknown message type"})
		}
	}
}

// handleStreamSubmit drives the machine and schedules the paced events.
func (h *WebSocketHandler) handleStreamSubmit(ctx context.Context, c *conn, scheduler *reveal.Scheduler, userID, text string) {
	out, accepted := h.base.chatSvc.Submit(ctx, userID, text)
	if !accepted {
		return
	}

	userMsg := domain.Message{Text: text, IsUser: true}
	c.send(ctx, wsOutbound{Type: "message", Message: &userMsg})

	if out.NextQuestion != "" {
		question := out.NextQuestion
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.base.cfg.QuestionDelay):
			}
			msg := domain.Message{Text: question}
			c.send(ctx, wsOutbound{Type: "message", Message: &msg})
		}()
	}

	if out.SearchStarted {
		c.send(ctx, wsOutbound{Type: "loading"})
		go h.streamSearch(ctx, c, scheduler, userID)
	}
}

// streamSearch runs the search and reveals its results one at a time.
func (h *WebSocketHandler) streamSearch(ctx context.Context, c *conn, scheduler *reveal.Scheduler, userID string) {
	snap, err := h.base.chatSvc.RunSearch(ctx, userID)
	if err != nil && !errors.Is(err, chat.ErrSearchInFlight) {
		slog.Error("Stream search failed", "error", err, "user_id", userID)
		return
	}
	if len(snap.Messages) > 0 {
		last := snap.Messages[len(snap.Messages)-1]
		if domain.IsCoursesMessage(last.Text) && len(snap.Messages) > 1 {
			last = snap.Messages[len(snap.Messages)-2]
		}
		c.send(ctx, wsOutbound{Type: "message", Message: &last})
	}

	courses := snap.Courses
	for shown := range scheduler.Start(ctx, len(courses)) {
		c.send(ctx, wsOutbound{
			Type:         "reveal",
			Shown:        shown,
			Course:       &courses[shown-1],
			Placeholders: reveal.Placeholders(shown),
		})
	}
}

// handleViewport coalesces resize/scroll bursts and answers with fresh
// line geometry.
func (h *WebSocketHandler) handleViewport(ctx context.Context, c *conn, debouncer *roadmap.Debouncer, userID string, msg wsInbound) {
	roadmapID := msg.RoadmapID
	container := msg.Container
	nodes := msg.Nodes

	debouncer.Trigger(func() {
		if ctx.Err() != nil {
			return
		}
		rm, err := h.base.repo.GetRoadmap(ctx, userID, roadmapID)
		if err != nil {
			c.send(ctx, wsOutbound{Type: "error", Error: "roadmap not found"})
			return
		}
		lines := roadmap.Lines(container, nodes, rm.Progresses())
		c.send(ctx, wsOutbound{Type: "lines", Lines: lines})
	})
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	allowed, err := url.Parse(h.allowedOrigin)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, allowed.Host)
}
