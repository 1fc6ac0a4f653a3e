package store

import (
	"context"
	"testing"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

func TestMemoryCreateSessionAssignsMaxPlusOne(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first, err := m.CreateSession(ctx, "u1", "Python")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	second, err := m.CreateSession(ctx, "u1", "Go")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", first, second)
	}
}

func TestMemoryListSessionsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := m.CreateSession(ctx, "u1", name); err != nil {
			t.Fatalf("CreateSession err: %v", err)
		}
	}
	if _, err := m.CreateSession(ctx, "someone-else", "not yours"); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	sessions, err := m.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSessions err: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].Name != "third" || sessions[2].Name != "first" {
		t.Fatalf("not newest first: %+v", sessions)
	}
}

func TestMemoryAppendAndGetSession(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.CreateSession(ctx, "u1", "Python")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	msgs := []domain.Message{
		{Text: "question"},
		{Text: "answer", IsUser: true},
	}
	for i, msg := range msgs {
		if err := m.AppendMessage(ctx, id, msg, i+1); err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
	}

	sess, err := m.GetSession(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sess.Messages))
	}
	if sess.Messages[1].Text != "answer" || !sess.Messages[1].IsUser {
		t.Fatalf("message order lost: %+v", sess.Messages)
	}

	// Returned copy must not alias internal state.
	sess.Messages[0].Text = "mutated"
	again, err := m.GetSession(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if again.Messages[0].Text != "question" {
		t.Fatal("GetSession leaked internal message slice")
	}
}

func TestMemoryGetSessionOwnership(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.CreateSession(ctx, "u1", "Python")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if _, err := m.GetSession(ctx, "u2", id); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign session, got %v", err)
	}
}

func TestMemorySaveAndGetRoadmap(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rm := &domain.Roadmap{
		Name:   "Backend developer",
		Status: domain.RoadmapCurrent,
		Courses: []domain.Course{
			{ID: 1, Title: "Complete Python Course", Progress: 1},
			{ID: 2, Title: "FastAPI for Beginners", Progress: 0.4},
		},
	}

	id, err := m.SaveRoadmap(ctx, "u1", rm)
	if err != nil {
		t.Fatalf("SaveRoadmap err: %v", err)
	}

	got, err := m.GetRoadmap(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetRoadmap err: %v", err)
	}
	if got.Name != "Backend developer" || len(got.Courses) != 2 {
		t.Fatalf("unexpected roadmap: %+v", got)
	}

	got.Status = domain.RoadmapDone
	got.ID = id
	if _, err := m.SaveRoadmap(ctx, "u1", got); err != nil {
		t.Fatalf("SaveRoadmap update err: %v", err)
	}
	updated, err := m.GetRoadmap(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetRoadmap err: %v", err)
	}
	if updated.Status != domain.RoadmapDone {
		t.Fatalf("update lost: %+v", updated)
	}
}
