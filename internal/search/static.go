package search

import (
	"context"
	"strings"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

// StaticCatalog serves a fixed course list. It stands in for the catalog
// service during development and in tests.
type StaticCatalog struct {
	Courses []domain.Course
	// Err, when set, is returned from every call.
	Err error
}

// DefaultCatalog returns a catalog preloaded with sample courses.
func DefaultCatalog() *StaticCatalog {
	return &StaticCatalog{Courses: []domain.Course{
		{
			ID:         1,
			Title:      "FastAPI for Beginners",
			CoverURL:   "/assets/courseImage.png",
			Duration:   5,
			Difficulty: "easy",
			Price:      0,
			PupilsNum:  1200,
			Authors:    []string{"Ivan Ivanov"},
			Rating:     5,
			URL:        "https://example.com/course/1",
		},
		{
			ID:         2,
			Title:      "Complete Python Course",
			CoverURL:   "/assets/courseImage.png",
			Duration:   40,
			Difficulty: "medium",
			Price:      12000,
			PupilsNum:  1200,
			Authors:    []string{"Maria Petrova", "Sergey Sidorov"},
			Rating:     4,
			URL:        "https://example.com/course/2",
		},
		{
			ID:         3,
			Title:      "Go Backend Fundamentals",
			CoverURL:   "/assets/courseImage.png",
			Duration:   24,
			Difficulty: "medium",
			Price:      8000,
			PupilsNum:  640,
			Authors:    []string{"Arthur Didi"},
			Rating:     5,
			URL:        "https://example.com/course/3",
		},
	}}
}

// Search matches courses whose title contains the requested area,
// case-insensitively. An empty match set is an empty result, not an
// error.
func (s *StaticCatalog) Search(_ context.Context, answers domain.Answers, _ int) ([]domain.Course, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	area := strings.ToLower(strings.TrimSpace(answers.Area))
	if area == "" {
		return nil, nil
	}

	var out []domain.Course
	for _, c := range s.Courses {
		if strings.Contains(strings.ToLower(c.Title), area) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Popular returns the whole fixed list.
func (s *StaticCatalog) Popular(context.Context) ([]domain.Course, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.Course, len(s.Courses))
	copy(out, s.Courses)
	return out, nil
}
