package conversation

import (
	"errors"
	"testing"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

func submitAll(t *testing.T, e *Engine, answers ...string) Submission {
	t.Helper()
	var last Submission
	for _, a := range answers {
		sub, ok := e.Submit(a)
		if !ok {
			t.Fatalf("Submit(%q) rejected", a)
		}
		last = sub
	}
	return last
}

func TestSubmitFillsSlotsInOrder(t *testing.T) {
	e := New()

	sub, ok := e.Submit("Python")
	if !ok {
		t.Fatal("first submit rejected")
	}
	if !sub.UserMessage.IsUser || sub.UserMessage.Text != "Python" {
		t.Fatalf("unexpected user message: %+v", sub.UserMessage)
	}
	if sub.NextQuestion != Questions[1] {
		t.Fatalf("expected second question, got %q", sub.NextQuestion)
	}
	if sub.SearchNow {
		t.Fatal("search fired before slots were complete")
	}
	if got := e.State(); got.Phase != PhaseAwaitingSlot || got.Slot != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestSubmitCompleteSetTriggersSearchOnce(t *testing.T) {
	e := New()
	last := submitAll(t, e, "Python", "beginner", "backend")

	if !last.SearchNow {
		t.Fatal("search not triggered on final slot")
	}
	want := domain.Answers{Area: "Python", CurrentLevel: "beginner", DesiredSkills: "backend"}
	if last.Answers != want {
		t.Fatalf("unexpected answers: %+v", last.Answers)
	}
	if e.State().Phase != PhaseSearching {
		t.Fatalf("expected searching phase, got %+v", e.State())
	}
	if !e.Loading() || !e.InputWithdrawn() {
		t.Fatal("expected loading with input withdrawn")
	}

	// Further submissions are rejected while the search is in flight.
	if _, ok := e.Submit("more text"); ok {
		t.Fatal("submission accepted during search")
	}
}

func TestSubmitRejectsWhitespace(t *testing.T) {
	e := New()
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, ok := e.Submit(text); ok {
			t.Fatalf("whitespace submission %q accepted", text)
		}
	}
	if got := e.State(); got.Phase != PhaseAwaitingSlot || got.Slot != 0 {
		t.Fatalf("state changed by rejected submissions: %+v", got)
	}
}

func TestCompleteSearchSuccess(t *testing.T) {
	e := New()
	submitAll(t, e, "Python", "beginner", "backend")

	courses := []domain.Course{{ID: 1, Title: "Complete Python Course"}}
	msg, ok := e.CompleteSearch(courses, nil)
	if !ok {
		t.Fatal("completion dropped")
	}
	if msg.Text != ResultsLeadIn || msg.IsUser {
		t.Fatalf("unexpected outcome message: %+v", msg)
	}
	if e.State().Phase != PhaseResultsReady {
		t.Fatalf("expected ready, got %+v", e.State())
	}
	if len(e.Courses()) != 1 {
		t.Fatalf("staged courses not kept: %+v", e.Courses())
	}
	if !e.InputWithdrawn() {
		t.Fatal("input still accepted in terminal state")
	}
}

func TestCompleteSearchEmpty(t *testing.T) {
	e := New()
	submitAll(t, e, "Python", "beginner", "backend")

	msg, ok := e.CompleteSearch(nil, nil)
	if !ok {
		t.Fatal("completion dropped")
	}
	if msg.Text != NothingFound {
		t.Fatalf("unexpected message: %q", msg.Text)
	}
	if e.State().Phase != PhaseResultsEmpty {
		t.Fatalf("expected empty terminal, got %+v", e.State())
	}
}

func TestCompleteSearchFailure(t *testing.T) {
	e := New()
	submitAll(t, e, "Python", "beginner", "backend")

	msg, ok := e.CompleteSearch(nil, errors.New("boom"))
	if !ok {
		t.Fatal("completion dropped")
	}
	if msg.Text != SearchFailed {
		t.Fatalf("unexpected message: %q", msg.Text)
	}
	if e.State().Phase != PhaseResultsError {
		t.Fatalf("expected error terminal, got %+v", e.State())
	}
}

func TestCompleteSearchIgnoredOutsideSearching(t *testing.T) {
	e := New()
	if _, ok := e.CompleteSearch(nil, nil); ok {
		t.Fatal("stale completion applied to fresh engine")
	}

	submitAll(t, e, "Python", "beginner", "backend")
	e.CompleteSearch(nil, errors.New("boom"))
	if _, ok := e.CompleteSearch([]domain.Course{{ID: 1}}, nil); ok {
		t.Fatal("second completion applied after terminal state")
	}
}

func TestFromLogPartialConversation(t *testing.T) {
	log := []domain.Message{
		{Text: Questions[0]},
		{Text: "Go", IsUser: true},
		{Text: Questions[1]},
	}

	e := FromLog(log)
	if got := e.State(); got.Phase != PhaseAwaitingSlot || got.Slot != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}
	if e.Answers().Area != "Go" {
		t.Fatalf("answers not rebuilt: %+v", e.Answers())
	}
}

func TestFromLogRebuildsStoredResults(t *testing.T) {
	courses := []domain.Course{{ID: 7, Title: "FastAPI for Beginners", Authors: []string{"Ivan Ivanov"}}}
	encoded, err := domain.EncodeCourses(courses)
	if err != nil {
		t.Fatalf("EncodeCourses err: %v", err)
	}

	log := []domain.Message{
		{Text: Questions[0]},
		{Text: "Python", IsUser: true},
		{Text: Questions[1]},
		{Text: "beginner", IsUser: true},
		{Text: Questions[2]},
		{Text: "backend", IsUser: true},
		{Text: ResultsLeadIn},
		{Text: encoded},
	}

	e := FromLog(log)
	if e.State().Phase != PhaseResultsReady {
		t.Fatalf("expected ready, got %+v", e.State())
	}
	if len(e.Courses()) != 1 || e.Courses()[0].ID != 7 {
		t.Fatalf("courses not re-parsed: %+v", e.Courses())
	}

	// Re-deriving from the same log yields the same answers.
	again := FromLog(log)
	if again.Answers() != e.Answers() {
		t.Fatalf("re-derivation mismatch: %+v vs %+v", again.Answers(), e.Answers())
	}

	// The latch survives reconstruction: no further submissions fire a search.
	if _, ok := e.Submit("again"); ok {
		t.Fatal("submission accepted after reconstruction of terminal state")
	}
}

func TestFromLogEmptyOutcome(t *testing.T) {
	log := []domain.Message{
		{Text: Questions[0]},
		{Text: "Python", IsUser: true},
		{Text: Questions[1]},
		{Text: "beginner", IsUser: true},
		{Text: Questions[2]},
		{Text: "backend", IsUser: true},
		{Text: NothingFound},
	}
	if got := FromLog(log).State().Phase; got != PhaseResultsEmpty {
		t.Fatalf("expected empty terminal, got %v", got)
	}
}

func TestFromLogMissingOutcomeIsError(t *testing.T) {
	log := []domain.Message{
		{Text: Questions[0]},
		{Text: "Python", IsUser: true},
		{Text: Questions[1]},
		{Text: "beginner", IsUser: true},
		{Text: Questions[2]},
		{Text: "backend", IsUser: true},
	}
	if got := FromLog(log).State().Phase; got != PhaseResultsError {
		t.Fatalf("expected error terminal for interrupted search, got %v", got)
	}
}
