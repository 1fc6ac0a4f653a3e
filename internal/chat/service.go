// Package chat orchestrates conversations: the draft lifecycle, session
// selection, message persistence, and the single-shot course search.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/conversation"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/search"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/store"
)

var (
	// ErrNoConversation is returned when an operation requires an active
	// conversation and none exists.
	ErrNoConversation = errors.New("no active conversation")
	// ErrSearchInFlight is returned when a duplicate search trigger
	// arrives while a request is already running.
	ErrSearchInFlight = errors.New("search already in flight")
)

// active is the one conversation a user currently has on screen: either
// a draft (no id yet) or a selected persisted session. Exactly one of
// the two modes holds at any time.
type active struct {
	engine     *conversation.Engine
	sessionID  int    // 0 while drafting
	draftToken string // set while drafting
	name       string
	roadmapID  int
	messages   []domain.Message
	inFlight   bool
}

func (a *active) draft() bool { return a.sessionID == 0 }

// Service is the chat session store. All conversation state transitions
// for a given user run under the service mutex; searches run on their own
// goroutine or caller and re-apply under it.
type Service struct {
	repo     store.Repository
	searcher search.Searcher

	mu      sync.Mutex
	current map[string]*active
	pending map[string]string // one-shot landing-page message per user
}

// NewService wires the session store to its persistence and search
// collaborators. repo may be an in-memory store in guest mode.
func NewService(repo store.Repository, searcher search.Searcher) *Service {
	return &Service{
		repo:     repo,
		searcher: searcher,
		current:  make(map[string]*active),
		pending:  make(map[string]string),
	}
}

// Snapshot is a read-only view of the user's active conversation.
type Snapshot struct {
	SessionID      int                `json:"sessionId"`
	DraftToken     string             `json:"draftToken,omitempty"`
	Name           string             `json:"name"`
	RoadmapID      int                `json:"roadmapId"`
	Messages       []domain.Message   `json:"messages"`
	State          conversation.State `json:"state"`
	Courses        []domain.Course    `json:"courses,omitempty"`
	Loading        bool               `json:"loading"`
	InputWithdrawn bool               `json:"inputWithdrawn"`
}

// ListSessions returns the user's persisted sessions, newest id first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]*domain.ChatSession, error) {
	return s.repo.ListSessions(ctx, userID)
}

// StartDraft replaces the user's active conversation with a fresh draft.
// A draft is not yet a real session: it has no id and lives only here
// until the first completed answer promotes it.
func (s *Service) StartDraft(_ context.Context, userID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &active{
		engine:     conversation.New(),
		draftToken: uuid.NewString(),
		messages:   []domain.Message{{Text: conversation.Questions[0]}},
	}
	s.current[userID] = a
	return snapshotLocked(a)
}

// Select switches the active conversation to a persisted session. The
// machine position and answer set are rebuilt from the stored log, and
// any previously staged results, loading flags, or insertion latches from
// the prior conversation are discarded wholesale.
func (s *Service) Select(ctx context.Context, userID string, sessionID int) (Snapshot, error) {
	sess, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("select session %d: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := &active{
		engine:    conversation.FromLog(sess.Messages),
		sessionID: sess.ID,
		name:      sess.Name,
		roadmapID: sess.RoadmapID,
		messages:  append([]domain.Message(nil), sess.Messages...),
	}
	s.current[userID] = a
	return snapshotLocked(a), nil
}

// Current returns the active conversation view, or ok=false when the
// user has neither a draft nor a selected session.
func (s *Service) Current(userID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.current[userID]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotLocked(a), true
}

// SubmitOutcome reports what one accepted submission changed.
type SubmitOutcome struct {
	Snapshot Snapshot
	// NextQuestion was appended to the log; the streaming layer paces
	// its on-screen reveal.
	NextQuestion string
	// SearchStarted means the slot set just completed and RunSearch
	// must be called exactly once.
	SearchStarted bool
	// Promoted reports that a draft became a persisted session.
	Promoted bool
}

// Submit drives the active conversation one step with the user's text.
// Whitespace-only input and input in withdrawn states are rejected
// silently: ok=false, no state change. With no active conversation a
// fresh draft is started implicitly, matching the chat page opening on a
// new conversation.
func (s *Service) Submit(ctx context.Context, userID, text string) (SubmitOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.current[userID]
	if !ok {
		a = &active{
			engine:     conversation.New(),
			draftToken: uuid.NewString(),
			messages:   []domain.Message{{Text: conversation.Questions[0]}},
		}
		s.current[userID] = a
	}

	sub, accepted := a.engine.Submit(text)
	if !accepted {
		return SubmitOutcome{}, false
	}

	out := SubmitOutcome{NextQuestion: sub.NextQuestion, SearchStarted: sub.SearchNow}

	// Promotion: the first completed answer turns the draft into a real
	// session with a repository-assigned id.
	if a.draft() {
		name := strings.TrimSpace(sub.UserMessage.Text)
		id, err := s.repo.CreateSession(ctx, userID, name)
		if err != nil {
			slog.Error("Failed to promote draft to session", "error", err, "user_id", userID)
		} else {
			a.sessionID = id
			a.draftToken = ""
			a.name = name
			out.Promoted = true
			// Backfill the first canned question before the answer.
			s.persist(ctx, a, a.messages[0], 1)
		}
	}

	s.appendLocked(ctx, a, sub.UserMessage)
	if sub.NextQuestion != "" {
		s.appendLocked(ctx, a, domain.Message{Text: sub.NextQuestion})
	}

	out.Snapshot = snapshotLocked(a)
	return out, true
}

// RunSearch performs the course search for the active conversation and
// appends the single canned outcome message. The engine's latch plus the
// in-flight flag make the invocation at-most-once per completed answer
// set; duplicate triggers return ErrSearchInFlight.
func (s *Service) RunSearch(ctx context.Context, userID string) (Snapshot, error) {
	s.mu.Lock()
	a, ok := s.current[userID]
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, ErrNoConversation
	}
	if a.inFlight {
		snap := snapshotLocked(a)
		s.mu.Unlock()
		return snap, ErrSearchInFlight
	}
	if !a.engine.Loading() {
		snap := snapshotLocked(a)
		s.mu.Unlock()
		return snap, nil
	}
	a.inFlight = true
	answers := a.engine.Answers()
	sessionID := a.sessionID
	s.mu.Unlock()

	courses, err := s.searcher.Search(ctx, answers, sessionID)
	if err != nil {
		slog.Error("Course search failed", "error", err, "user_id", userID, "session_id", sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The user may have switched conversations while the request was in
	// flight; stale completions must not leak into the new one.
	if s.current[userID] != a {
		return snapshotLocked(s.current[userID]), nil
	}
	a.inFlight = false

	outcome, applied := a.engine.CompleteSearch(courses, err)
	if applied {
		s.appendLocked(ctx, a, outcome)
		if a.engine.State().Phase == conversation.PhaseResultsReady {
			if encoded, encErr := domain.EncodeCourses(courses); encErr != nil {
				slog.Error("Failed to encode courses for persistence", "error", encErr)
			} else {
				s.appendLocked(ctx, a, domain.Message{Text: encoded})
			}
		}
	}

	return snapshotLocked(a), nil
}

// Rename changes a persisted session's display name. The active copy, if
// it is the renamed session, follows suit.
func (s *Service) Rename(ctx context.Context, userID string, sessionID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename session %d: empty name", sessionID)
	}
	if err := s.repo.RenameSession(ctx, userID, sessionID, name); err != nil {
		return fmt.Errorf("rename session %d: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.current[userID]; ok && a.sessionID == sessionID {
		a.name = name
	}
	return nil
}

// SaveRoadmap persists the active conversation's course results as a
// roadmap and links it to the session. Requires a promoted session whose
// search has produced results.
func (s *Service) SaveRoadmap(ctx context.Context, userID, name string) (*domain.Roadmap, error) {
	s.mu.Lock()
	a, ok := s.current[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoConversation
	}
	if a.draft() {
		s.mu.Unlock()
		return nil, errors.New("conversation not yet persisted")
	}
	courses := a.engine.Courses()
	if a.engine.State().Phase != conversation.PhaseResultsReady || len(courses) == 0 {
		s.mu.Unlock()
		return nil, errors.New("no course results to save")
	}
	sessionID := a.sessionID
	if strings.TrimSpace(name) == "" {
		name = a.name
	}
	s.mu.Unlock()

	rm := &domain.Roadmap{
		Status:  domain.RoadmapCurrent,
		Name:    name,
		Courses: courses,
	}
	id, err := s.repo.SaveRoadmap(ctx, userID, rm)
	if err != nil {
		return nil, fmt.Errorf("save roadmap: %w", err)
	}
	rm.ID = id
	if err := s.repo.SetSessionRoadmap(ctx, sessionID, id); err != nil {
		return nil, fmt.Errorf("link roadmap %d to session %d: %w", id, sessionID, err)
	}

	s.mu.Lock()
	if a2, ok := s.current[userID]; ok && a2.sessionID == sessionID {
		a2.roadmapID = id
	}
	s.mu.Unlock()
	return rm, nil
}

// SetPending stores the landing-page query typed before navigating to the
// chat view. One value per user; overwritten by later writes.
func (s *Service) SetPending(userID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = text
}

// ConsumePending returns and clears the pending first message.
func (s *Service) ConsumePending(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.pending[userID]
	if ok {
		delete(s.pending, userID)
	}
	return text, ok
}

// appendLocked applies the optimistic append discipline: local state
// first, then durable storage. A persistence failure is logged and the
// local append stands.
func (s *Service) appendLocked(ctx context.Context, a *active, msg domain.Message) {
	a.messages = append(a.messages, msg)
	s.persist(ctx, a, msg, len(a.messages))
}

func (s *Service) persist(ctx context.Context, a *active, msg domain.Message, position int) {
	if a.draft() {
		return
	}
	if err := s.repo.AppendMessage(ctx, a.sessionID, msg, position); err != nil {
		slog.Error("Failed to persist message", "error", err, "session_id", a.sessionID, "position", position)
	}
}

func snapshotLocked(a *active) Snapshot {
	if a == nil {
		return Snapshot{}
	}
	msgs := make([]domain.Message, len(a.messages))
	copy(msgs, a.messages)
	return Snapshot{
		SessionID:      a.sessionID,
		DraftToken:     a.draftToken,
		Name:           a.name,
		RoadmapID:      a.roadmapID,
		Messages:       msgs,
		State:          a.engine.State(),
		Courses:        a.engine.Courses(),
		Loading:        a.engine.Loading(),
		InputWithdrawn: a.engine.InputWithdrawn(),
	}
}
