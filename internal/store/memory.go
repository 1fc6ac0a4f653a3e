package store

import (
	"context"
	"sync"
	"time"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

// MemoryStore implements Repository entirely in memory. It backs guest
// mode, where session features degrade to non-persistent operation for
// the life of the process, and doubles as the test repository.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	sessions map[int]*memorySession
	roadmaps map[int]*memoryRoadmap
}

type memorySession struct {
	owner string
	sess  domain.ChatSession
}

type memoryRoadmap struct {
	owner   string
	roadmap domain.Roadmap
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*domain.User),
		sessions: make(map[int]*memorySession),
		roadmaps: make(map[int]*memoryRoadmap),
	}
}

// GetUser retrieves a user by ID.
func (m *MemoryStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// UpsertUser creates or updates a user record.
func (m *MemoryStore) UpsertUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.UserID] = &copied
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (m *MemoryStore) UpdateLastSeen(_ context.Context, userID string, lastSeen time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[userID]; ok {
		user.LastSeenAt = lastSeen
		user.UpdatedAt = time.Now()
	}
	return nil
}

// ListSessions returns the user's sessions, newest id first.
func (m *MemoryStore) ListSessions(_ context.Context, userID string) ([]*domain.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	maxID := 0
	for id, entry := range m.sessions {
		if entry.owner == userID && id > maxID {
			maxID = id
		}
	}

	var sessions []*domain.ChatSession
	for id := maxID; id >= 1; id-- {
		entry, ok := m.sessions[id]
		if !ok || entry.owner != userID {
			continue
		}
		copied := entry.sess
		copied.Messages = nil
		sessions = append(sessions, &copied)
	}
	return sessions, nil
}

// GetSession retrieves one session with its message log.
func (m *MemoryStore) GetSession(_ context.Context, userID string, sessionID int) (*domain.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[sessionID]
	if !ok || entry.owner != userID {
		return nil, ErrNotFound
	}
	copied := entry.sess
	copied.Messages = make([]domain.Message, len(entry.sess.Messages))
	copy(copied.Messages, entry.sess.Messages)
	return &copied, nil
}

// CreateSession assigns max(existing ids)+1, mirroring the id rule the
// frontend used when no backend was present.
func (m *MemoryStore) CreateSession(_ context.Context, userID, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := 1
	for existing := range m.sessions {
		if existing >= id {
			id = existing + 1
		}
	}

	m.sessions[id] = &memorySession{
		owner: userID,
		sess:  domain.ChatSession{ID: id, Name: name},
	}
	return id, nil
}

// RenameSession updates a session's display name.
func (m *MemoryStore) RenameSession(_ context.Context, userID string, sessionID int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok || entry.owner != userID {
		return ErrNotFound
	}
	entry.sess.Name = name
	return nil
}

// AppendMessage stores one message at the end of the session's log.
// Position is accepted for interface parity; in-memory logs are always
// contiguous.
func (m *MemoryStore) AppendMessage(_ context.Context, sessionID int, msg domain.Message, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	entry.sess.Messages = append(entry.sess.Messages, msg)
	return nil
}

// SetSessionRoadmap links a session to its generated roadmap.
func (m *MemoryStore) SetSessionRoadmap(_ context.Context, sessionID, roadmapID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	entry.sess.RoadmapID = roadmapID
	return nil
}

// ListRoadmaps returns the user's roadmaps in id order.
func (m *MemoryStore) ListRoadmaps(_ context.Context, userID string) ([]*domain.Roadmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	maxID := 0
	for id, entry := range m.roadmaps {
		if entry.owner == userID && id > maxID {
			maxID = id
		}
	}

	var roadmaps []*domain.Roadmap
	for id := 1; id <= maxID; id++ {
		entry, ok := m.roadmaps[id]
		if !ok || entry.owner != userID {
			continue
		}
		copied := entry.roadmap
		roadmaps = append(roadmaps, &copied)
	}
	return roadmaps, nil
}

// GetRoadmap retrieves one roadmap with its course list.
func (m *MemoryStore) GetRoadmap(_ context.Context, userID string, roadmapID int) (*domain.Roadmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.roadmaps[roadmapID]
	if !ok || entry.owner != userID {
		return nil, ErrNotFound
	}
	copied := entry.roadmap
	copied.Courses = make([]domain.Course, len(entry.roadmap.Courses))
	copy(copied.Courses, entry.roadmap.Courses)
	return &copied, nil
}

// SaveRoadmap creates or replaces a roadmap and returns its id.
func (m *MemoryStore) SaveRoadmap(_ context.Context, userID string, roadmap *domain.Roadmap) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := roadmap.ID
	if id == 0 {
		id = 1
		for existing := range m.roadmaps {
			if existing >= id {
				id = existing + 1
			}
		}
	} else if entry, ok := m.roadmaps[id]; !ok || entry.owner != userID {
		return 0, ErrNotFound
	}

	copied := *roadmap
	copied.ID = id
	copied.Courses = make([]domain.Course, len(roadmap.Courses))
	copy(copied.Courses, roadmap.Courses)
	m.roadmaps[id] = &memoryRoadmap{owner: userID, roadmap: copied}
	return id, nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
