// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist or is
// owned by another user.
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for persisting users, chat sessions,
// and roadmaps. The SQLite backend and the in-memory guest store are
// interchangeable implementations of the same capability set.
type Repository interface {
	// GetUser retrieves a user by ID. Returns nil, nil when unknown.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// ListSessions returns the user's chat sessions, newest id first,
	// without message logs.
	ListSessions(ctx context.Context, userID string) ([]*domain.ChatSession, error)

	// GetSession retrieves one session with its full message log in
	// stored order.
	GetSession(ctx context.Context, userID string, sessionID int) (*domain.ChatSession, error)

	// CreateSession persists a new session and returns its assigned id.
	CreateSession(ctx context.Context, userID, name string) (int, error)

	// RenameSession updates a session's display name.
	RenameSession(ctx context.Context, userID string, sessionID int, name string) error

	// AppendMessage durably stores one message at a 1-based position
	// within the session's log.
	AppendMessage(ctx context.Context, sessionID int, msg domain.Message, position int) error

	// SetSessionRoadmap links a session to its generated roadmap.
	SetSessionRoadmap(ctx context.Context, sessionID, roadmapID int) error

	// ListRoadmaps returns the user's roadmaps in id order.
	ListRoadmaps(ctx context.Context, userID string) ([]*domain.Roadmap, error)

	// GetRoadmap retrieves one roadmap with its ordered course list.
	GetRoadmap(ctx context.Context, userID string, roadmapID int) (*domain.Roadmap, error)

	// SaveRoadmap creates a roadmap (id 0) or replaces an existing one,
	// returning its id.
	SaveRoadmap(ctx context.Context, userID string, roadmap *domain.Roadmap) (int, error)

	// Ping verifies storage connectivity.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}
