// Package search talks to the course catalog collaborator.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

// ErrSearchFailed is the generic failure every non-success catalog
// response collapses into. Callers convert it to the canned error bubble;
// details stay in the logs.
var ErrSearchFailed = errors.New("course search failed")

// Searcher is the course search contract the conversation flow depends
// on. The HTTP client and the static catalog are interchangeable.
type Searcher interface {
	// Search returns courses matching the completed answer set, in
	// server order. sessionID correlates the request with a persisted
	// conversation; 0 means none.
	Search(ctx context.Context, answers domain.Answers, sessionID int) ([]domain.Course, error)

	// Popular returns the catalog's popular courses.
	Popular(ctx context.Context) ([]domain.Course, error)
}

// Client implements Searcher against the catalog HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client. baseURL points at the catalog
// service root, e.g. "http://catalog:8000/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Search performs one POST /courses/search round-trip.
func (c *Client) Search(ctx context.Context, answers domain.Answers, sessionID int) ([]domain.Course, error) {
	body, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/courses/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if sessionID != 0 {
		req.Header.Set("X-Chat-ID", strconv.Itoa(sessionID))
	}

	return c.doCourses(req)
}

// Popular performs one GET /courses/popular round-trip.
func (c *Client) Popular(ctx context.Context) ([]domain.Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/courses/popular", nil)
	if err != nil {
		return nil, fmt.Errorf("build popular request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	return c.doCourses(req)
}

func (c *Client) doCourses(req *http.Request) ([]domain.Course, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	// 404 is the catalog's "no matches" answer, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var courses []domain.Course
	if err := json.NewDecoder(resp.Body).Decode(&courses); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}
	return courses, nil
}
