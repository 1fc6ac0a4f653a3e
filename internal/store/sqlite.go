package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		avatar_url TEXT,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		roadmap_id INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		is_user INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(chat_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, position);

	CREATE TABLE IF NOT EXISTS roadmaps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		courses_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_roadmaps_user ON roadmaps(user_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, display_name, avatar_url, last_seen_at, created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var avatarURL sql.NullString
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(&user.UserID, &user.DisplayName, &avatarURL, &lastSeen, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.AvatarURL = avatarURL.String
	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, display_name, avatar_url, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		display_name = excluded.display_name,
		avatar_url = excluded.avatar_url,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	var avatarURL interface{}
	if user.AvatarURL != "" {
		avatarURL = user.AvatarURL
	}

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.DisplayName, avatarURL,
		user.LastSeenAt.Unix(), user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}

	return nil
}

// ListSessions returns the user's chat sessions, newest id first.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]*domain.ChatSession, error) {
	query := `SELECT id, name, roadmap_id FROM chats WHERE user_id = ? ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close session rows", "error", closeErr)
		}
	}()

	var sessions []*domain.ChatSession
	for rows.Next() {
		var sess domain.ChatSession
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.RoadmapID); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, &sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// GetSession retrieves one session with its message log.
func (s *SQLiteStore) GetSession(ctx context.Context, userID string, sessionID int) (*domain.ChatSession, error) {
	query := `SELECT id, name, roadmap_id FROM chats WHERE id = ? AND user_id = ?`
	row := s.db.QueryRowContext(ctx, query, sessionID, userID)

	var sess domain.ChatSession
	err := row.Scan(&sess.ID, &sess.Name, &sess.RoadmapID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	msgQuery := `SELECT text, is_user FROM messages WHERE chat_id = ? ORDER BY position ASC`
	rows, err := s.db.QueryContext(ctx, msgQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close message rows", "error", closeErr)
		}
	}()

	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.Text, &msg.IsUser); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		sess.Messages = append(sess.Messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return &sess, nil
}

// CreateSession persists a new session and returns its assigned id.
func (s *SQLiteStore) CreateSession(ctx context.Context, userID, name string) (int, error) {
	query := `INSERT INTO chats (user_id, name, roadmap_id, created_at) VALUES (?, ?, 0, ?)`
	result, err := s.db.ExecContext(ctx, query, userID, name, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session insert id: %w", err)
	}
	return int(id), nil
}

// RenameSession updates a session's display name.
func (s *SQLiteStore) RenameSession(ctx context.Context, userID string, sessionID int, name string) error {
	query := `UPDATE chats SET name = ? WHERE id = ? AND user_id = ?`
	result, err := s.db.ExecContext(ctx, query, name, sessionID, userID)
	if err != nil {
		return fmt.Errorf("rename session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage durably stores one message at its 1-based position.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID int, msg domain.Message, position int) error {
	query := `INSERT INTO messages (chat_id, position, text, is_user, created_at) VALUES (?, ?, ?, ?, ?)`
	isUser := 0
	if msg.IsUser {
		isUser = 1
	}
	if _, err := s.db.ExecContext(ctx, query, sessionID, position, msg.Text, isUser, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// SetSessionRoadmap links a session to its generated roadmap.
func (s *SQLiteStore) SetSessionRoadmap(ctx context.Context, sessionID, roadmapID int) error {
	query := `UPDATE chats SET roadmap_id = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, roadmapID, sessionID)
	if err != nil {
		return fmt.Errorf("set session roadmap: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRoadmaps returns the user's roadmaps in id order.
func (s *SQLiteStore) ListRoadmaps(ctx context.Context, userID string) ([]*domain.Roadmap, error) {
	query := `SELECT id, name, status, courses_json FROM roadmaps WHERE user_id = ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query roadmaps: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close roadmap rows", "error", closeErr)
		}
	}()

	var roadmaps []*domain.Roadmap
	for rows.Next() {
		rm, err := scanRoadmap(rows)
		if err != nil {
			return nil, err
		}
		roadmaps = append(roadmaps, rm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roadmaps: %w", err)
	}

	return roadmaps, nil
}

func scanRoadmap(rows *sql.Rows) (*domain.Roadmap, error) {
	var rm domain.Roadmap
	var coursesJSON string
	if err := rows.Scan(&rm.ID, &rm.Name, &rm.Status, &coursesJSON); err != nil {
		return nil, fmt.Errorf("scan roadmap row: %w", err)
	}
	if err := json.Unmarshal([]byte(coursesJSON), &rm.Courses); err != nil {
		return nil, fmt.Errorf("decode roadmap courses: %w", err)
	}
	return &rm, nil
}

// GetRoadmap retrieves one roadmap with its ordered course list.
func (s *SQLiteStore) GetRoadmap(ctx context.Context, userID string, roadmapID int) (*domain.Roadmap, error) {
	query := `SELECT id, name, status, courses_json FROM roadmaps WHERE id = ? AND user_id = ?`
	row := s.db.QueryRowContext(ctx, query, roadmapID, userID)

	var rm domain.Roadmap
	var coursesJSON string
	err := row.Scan(&rm.ID, &rm.Name, &rm.Status, &coursesJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan roadmap row: %w", err)
	}
	if err := json.Unmarshal([]byte(coursesJSON), &rm.Courses); err != nil {
		return nil, fmt.Errorf("decode roadmap courses: %w", err)
	}

	return &rm, nil
}

// SaveRoadmap creates or replaces a roadmap and returns its id.
func (s *SQLiteStore) SaveRoadmap(ctx context.Context, userID string, roadmap *domain.Roadmap) (int, error) {
	coursesJSON, err := json.Marshal(roadmap.Courses)
	if err != nil {
		return 0, fmt.Errorf("encode roadmap courses: %w", err)
	}

	now := time.Now().Unix()
	if roadmap.ID == 0 {
		query := `INSERT INTO roadmaps (user_id, name, status, courses_json, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`
		result, err := s.db.ExecContext(ctx, query, userID, roadmap.Name, roadmap.Status, string(coursesJSON), now, now)
		if err != nil {
			return 0, fmt.Errorf("insert roadmap: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("roadmap insert id: %w", err)
		}
		return int(id), nil
	}

	query := `UPDATE roadmaps SET name = ?, status = ?, courses_json = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	result, err := s.db.ExecContext(ctx, query, roadmap.Name, roadmap.Status, string(coursesJSON), now, roadmap.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("update roadmap: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, ErrNotFound
	}
	return roadmap.ID, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
