package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

func TestClientSearch(t *testing.T) {
	var gotPayload domain.Answers
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/courses/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id header")
		}
		if r.Header.Get("X-Chat-ID") != "42" {
			t.Errorf("unexpected chat id header: %q", r.Header.Get("X-Chat-ID"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode([]domain.Course{{ID: 1, Title: "FastAPI for Beginners"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	courses, err := c.Search(context.Background(), domain.Answers{
		Area:          "Python",
		CurrentLevel:  "beginner",
		DesiredSkills: "backend",
	}, 42)
	if err != nil {
		t.Fatalf("Search err: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != 1 {
		t.Fatalf("unexpected courses: %+v", courses)
	}
	if gotPayload.Area != "Python" || gotPayload.CurrentLevel != "beginner" || gotPayload.DesiredSkills != "backend" {
		t.Fatalf("payload not forwarded verbatim: %+v", gotPayload)
	}
}

func TestClientSearchNotFoundIsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no courses"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	courses, err := c.Search(context.Background(), domain.Answers{Area: "x"}, 0)
	if err != nil {
		t.Fatalf("expected empty result, got err: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("expected no courses, got %+v", courses)
	}
}

func TestClientSearchServerErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.Search(context.Background(), domain.Answers{Area: "x"}, 0); !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
}

func TestClientPopular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses/popular" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]domain.Course{{ID: 1}, {ID: 2}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	courses, err := c.Popular(context.Background())
	if err != nil {
		t.Fatalf("Popular err: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("unexpected courses: %+v", courses)
	}
}

func TestStaticCatalogSearch(t *testing.T) {
	cat := DefaultCatalog()
	courses, err := cat.Search(context.Background(), domain.Answers{Area: "python"}, 0)
	if err != nil {
		t.Fatalf("Search err: %v", err)
	}
	if len(courses) != 1 || courses[0].Title != "Complete Python Course" {
		t.Fatalf("unexpected match: %+v", courses)
	}

	none, err := cat.Search(context.Background(), domain.Answers{Area: "underwater basket weaving"}, 0)
	if err != nil {
		t.Fatalf("Search err: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %+v", none)
	}
}
