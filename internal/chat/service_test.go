package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/conversation"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/search"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/store"
)

const user = "anon_0123"

func newService(catalog search.Searcher) (*Service, *store.MemoryStore) {
	repo := store.NewMemory()
	if catalog == nil {
		catalog = search.DefaultCatalog()
	}
	return NewService(repo, catalog), repo
}

func completeIntake(t *testing.T, svc *Service) SubmitOutcome {
	t.Helper()
	ctx := context.Background()

	var out SubmitOutcome
	for _, answer := range []string{"Python", "beginner", "backend"} {
		var ok bool
		out, ok = svc.Submit(ctx, user, answer)
		if !ok {
			t.Fatalf("Submit(%q) rejected", answer)
		}
	}
	return out
}

func TestStartDraftShowsFirstQuestion(t *testing.T) {
	svc, _ := newService(nil)

	snap := svc.StartDraft(context.Background(), user)
	if snap.SessionID != 0 || snap.DraftToken == "" {
		t.Fatalf("expected draft, got %+v", snap)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Text != conversation.Questions[0] {
		t.Fatalf("draft must open with the first question: %+v", snap.Messages)
	}
}

func TestSubmitPromotesDraftOnFirstAnswer(t *testing.T) {
	svc, repo := newService(nil)
	ctx := context.Background()

	svc.StartDraft(ctx, user)
	out, ok := svc.Submit(ctx, user, "Python")
	if !ok {
		t.Fatal("submit rejected")
	}
	if !out.Promoted {
		t.Fatal("draft not promoted on first answer")
	}
	if out.Snapshot.SessionID == 0 || out.Snapshot.DraftToken != "" {
		t.Fatalf("promotion left draft state: %+v", out.Snapshot)
	}
	if out.Snapshot.Name != "Python" {
		t.Fatalf("session name not derived from first answer: %q", out.Snapshot.Name)
	}

	// Both the question and answer made it to durable storage, in order.
	sess, err := repo.GetSession(ctx, user, out.Snapshot.SessionID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(sess.Messages) != 3 {
		t.Fatalf("expected question+answer+next question persisted, got %d", len(sess.Messages))
	}
	if sess.Messages[0].IsUser || sess.Messages[0].Text != conversation.Questions[0] {
		t.Fatalf("first persisted message should be the opening question: %+v", sess.Messages[0])
	}
	if !sess.Messages[1].IsUser || sess.Messages[1].Text != "Python" {
		t.Fatalf("second persisted message should be the answer: %+v", sess.Messages[1])
	}
}

func TestIntakeCompletionTriggersSearchOnce(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	out := completeIntake(t, svc)
	if !out.SearchStarted {
		t.Fatal("search not started on completed slot set")
	}
	if !out.Snapshot.Loading {
		t.Fatal("expected loading snapshot during search window")
	}

	snap, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}
	if snap.State.Phase != conversation.PhaseResultsReady {
		t.Fatalf("expected ready, got %+v", snap.State)
	}
	if len(snap.Courses) == 0 {
		t.Fatal("no staged courses")
	}

	// Re-running after the terminal state is a no-op, not a second search.
	again, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}
	if again.State.Phase != conversation.PhaseResultsReady {
		t.Fatalf("phase changed by duplicate trigger: %+v", again.State)
	}

	// Courses were persisted behind the sentinel prefix.
	foundEncoded := false
	for _, m := range again.Messages {
		if domain.IsCoursesMessage(m.Text) {
			foundEncoded = true
		}
	}
	if !foundEncoded {
		t.Fatal("results not persisted as a sentinel-prefixed message")
	}
}

func TestRunSearchEmptyResult(t *testing.T) {
	svc, _ := newService(&search.StaticCatalog{})
	ctx := context.Background()

	completeIntake(t, svc)
	snap, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}
	if snap.State.Phase != conversation.PhaseResultsEmpty {
		t.Fatalf("expected empty terminal, got %+v", snap.State)
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.Text != conversation.NothingFound {
		t.Fatalf("unexpected outcome message: %q", last.Text)
	}
	if !snap.InputWithdrawn {
		t.Fatal("input still offered after terminal state")
	}
}

func TestRunSearchFailure(t *testing.T) {
	svc, _ := newService(&search.StaticCatalog{Err: errors.New("catalog down")})
	ctx := context.Background()

	completeIntake(t, svc)
	snap, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}
	if snap.State.Phase != conversation.PhaseResultsError {
		t.Fatalf("expected error terminal, got %+v", snap.State)
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.Text != conversation.SearchFailed {
		t.Fatalf("unexpected outcome message: %q", last.Text)
	}
}

func TestSelectRebuildsConversation(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	completeIntake(t, svc)
	ready, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}

	// Switch to a fresh draft, then back to the stored session.
	svc.StartDraft(ctx, user)
	snap, err := svc.Select(ctx, user, ready.SessionID)
	if err != nil {
		t.Fatalf("Select err: %v", err)
	}

	if snap.State.Phase != conversation.PhaseResultsReady {
		t.Fatalf("phase not rebuilt, got %+v", snap.State)
	}
	if len(snap.Courses) != len(ready.Courses) {
		t.Fatalf("courses not re-parsed: %d vs %d", len(snap.Courses), len(ready.Courses))
	}
	if len(snap.Messages) < len(ready.Messages) {
		t.Fatalf("message log shrank across select: %d < %d", len(snap.Messages), len(ready.Messages))
	}

	// Selecting again is idempotent with respect to the derived view.
	again, err := svc.Select(ctx, user, ready.SessionID)
	if err != nil {
		t.Fatalf("Select err: %v", err)
	}
	if len(again.Messages) != len(snap.Messages) || again.State != snap.State {
		t.Fatalf("re-select changed derived state: %+v vs %+v", again.State, snap.State)
	}
}

func TestSelectMidConversationResumesSlot(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	svc.StartDraft(ctx, user)
	out, ok := svc.Submit(ctx, user, "Go")
	if !ok {
		t.Fatal("submit rejected")
	}

	svc.StartDraft(ctx, user)
	snap, err := svc.Select(ctx, user, out.Snapshot.SessionID)
	if err != nil {
		t.Fatalf("Select err: %v", err)
	}
	if snap.State.Phase != conversation.PhaseAwaitingSlot || snap.State.Slot != 1 {
		t.Fatalf("expected slot 1, got %+v", snap.State)
	}
}

func TestStaleSearchDroppedAfterSwitch(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	completeIntake(t, svc)

	// The user starts a new draft before the search completes.
	svc.StartDraft(ctx, user)

	snap, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}
	// The new draft must not inherit the old search's results.
	if snap.State.Phase != conversation.PhaseAwaitingSlot || len(snap.Courses) != 0 {
		t.Fatalf("stale search leaked into new draft: %+v", snap)
	}
}

func TestPendingFirstMessageIsOneShot(t *testing.T) {
	svc, _ := newService(nil)

	if _, ok := svc.ConsumePending(user); ok {
		t.Fatal("pending value before any set")
	}

	svc.SetPending(user, "machine learning")
	got, ok := svc.ConsumePending(user)
	if !ok || got != "machine learning" {
		t.Fatalf("unexpected pending value: %q ok=%v", got, ok)
	}
	if _, ok := svc.ConsumePending(user); ok {
		t.Fatal("pending value not cleared on first read")
	}
}

func TestRenameUpdatesActiveConversation(t *testing.T) {
	svc, repo := newService(nil)
	ctx := context.Background()

	svc.StartDraft(ctx, user)
	out, _ := svc.Submit(ctx, user, "Go")

	if err := svc.Rename(ctx, user, out.Snapshot.SessionID, "Go basics"); err != nil {
		t.Fatalf("Rename err: %v", err)
	}

	snap, _ := svc.Current(user)
	if snap.Name != "Go basics" {
		t.Fatalf("active name not updated: %q", snap.Name)
	}
	sess, err := repo.GetSession(ctx, user, out.Snapshot.SessionID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if sess.Name != "Go basics" {
		t.Fatalf("stored name not updated: %q", sess.Name)
	}

	if err := svc.Rename(ctx, user, out.Snapshot.SessionID, "  "); err == nil {
		t.Fatal("blank rename accepted")
	}
}

func TestSaveRoadmapLinksSession(t *testing.T) {
	svc, repo := newService(nil)
	ctx := context.Background()

	// Before any results there is nothing to save.
	svc.StartDraft(ctx, user)
	if _, err := svc.SaveRoadmap(ctx, user, "too early"); err == nil {
		t.Fatal("expected error before results")
	}

	completeIntake(t, svc)
	ready, err := svc.RunSearch(ctx, user)
	if err != nil {
		t.Fatalf("RunSearch err: %v", err)
	}

	rm, err := svc.SaveRoadmap(ctx, user, "Backend path")
	if err != nil {
		t.Fatalf("SaveRoadmap err: %v", err)
	}
	if rm.ID == 0 || rm.Name != "Backend path" || len(rm.Courses) != len(ready.Courses) {
		t.Fatalf("unexpected roadmap: %+v", rm)
	}

	sess, err := repo.GetSession(ctx, user, ready.SessionID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if sess.RoadmapID != rm.ID {
		t.Fatalf("session not linked: roadmap_id=%d want %d", sess.RoadmapID, rm.ID)
	}

	snap, _ := svc.Current(user)
	if snap.RoadmapID != rm.ID {
		t.Fatalf("active conversation missing link: %d", snap.RoadmapID)
	}
}

func TestMessageLogMonotonic(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	svc.StartDraft(ctx, user)
	prev := 1
	for _, answer := range []string{"Python", "beginner", "backend"} {
		out, ok := svc.Submit(ctx, user, answer)
		if !ok {
			t.Fatalf("Submit(%q) rejected", answer)
		}
		if len(out.Snapshot.Messages) < prev {
			t.Fatalf("message log shrank: %d -> %d", prev, len(out.Snapshot.Messages))
		}
		prev = len(out.Snapshot.Messages)
	}

	// Rejected submissions leave the log untouched.
	if _, ok := svc.Submit(ctx, user, "   "); ok {
		t.Fatal("whitespace submission accepted")
	}
	snap, _ := svc.Current(user)
	if len(snap.Messages) != prev {
		t.Fatalf("rejected submission changed the log: %d -> %d", prev, len(snap.Messages))
	}
}
