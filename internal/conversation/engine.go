package conversation

import (
	"strings"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"
)

// Phase enumerates the machine positions of one conversation.
type Phase int

const (
	// PhaseAwaitingSlot means a canned question has been asked and the
	// machine is waiting for the answer to State.Slot.
	PhaseAwaitingSlot Phase = iota
	// PhaseSearching means all slots are filled and the course search is
	// in flight.
	PhaseSearching
	// PhaseResultsReady is terminal: the search returned courses.
	PhaseResultsReady
	// PhaseResultsEmpty is terminal: the search returned nothing.
	PhaseResultsEmpty
	// PhaseResultsError is terminal: the search failed.
	PhaseResultsError
)

// State is the machine position as a single tagged value, so illegal flag
// combinations (searching while still answering, results while drafting)
// are unrepresentable.
type State struct {
	Phase Phase `json:"phase"`
	Slot  int   `json:"slot"`
}

// Terminal reports whether the conversation has reached an outcome.
func (s State) Terminal() bool {
	return s.Phase == PhaseResultsReady || s.Phase == PhaseResultsEmpty || s.Phase == PhaseResultsError
}

// Engine drives one conversation through the fixed question sequence into
// the single-shot course search. It owns no I/O: Submit and CompleteSearch
// return what the caller must append or invoke.
type Engine struct {
	state       State
	answers     Accumulator
	courses     []domain.Course
	searchFired bool
}

// New returns an engine positioned at the first slot. The caller is
// responsible for having shown Questions[0] in the conversation log.
func New() *Engine {
	return &Engine{state: State{Phase: PhaseAwaitingSlot, Slot: 0}}
}

// Submission describes the consequences of one accepted user submission.
type Submission struct {
	// UserMessage is the message to append to the log.
	UserMessage domain.Message
	// NextQuestion is the canned question to append after the pacing
	// delay; empty when no question follows.
	NextQuestion string
	// SearchNow is true when the slot set just became complete and the
	// course search must be invoked with Answers.
	SearchNow bool
	// Answers is the populated slot set, meaningful when SearchNow.
	Answers domain.Answers
}

// Submit feeds one user input into the machine. Whitespace-only input and
// input arriving outside an awaiting-slot phase are rejected silently with
// ok=false and no state change. Accepted text is stored verbatim.
func (e *Engine) Submit(text string) (Submission, bool) {
	if strings.TrimSpace(text) == "" {
		return Submission{}, false
	}
	if e.state.Phase != PhaseAwaitingSlot {
		return Submission{}, false
	}

	slot := e.state.Slot
	e.answers.Set(slot, text)

	sub := Submission{UserMessage: domain.Message{Text: text, IsUser: true}}

	if slot+1 < SlotCount {
		sub.NextQuestion = Questions[slot+1]
		e.state = State{Phase: PhaseAwaitingSlot, Slot: slot + 1}
		return sub, true
	}

	e.state = State{Phase: PhaseSearching}
	if !e.searchFired {
		e.searchFired = true
		sub.SearchNow = true
		sub.Answers = e.answers.Answers()
	}
	return sub, true
}

// CompleteSearch records the search outcome and returns the single canned
// outcome message to append. Completions arriving outside the searching
// phase (stale callbacks after the session was switched) are dropped.
func (e *Engine) CompleteSearch(courses []domain.Course, err error) (domain.Message, bool) {
	if e.state.Phase != PhaseSearching {
		return domain.Message{}, false
	}

	switch {
	case err != nil:
		e.state = State{Phase: PhaseResultsError}
		return domain.Message{Text: SearchFailed}, true
	case len(courses) == 0:
		e.state = State{Phase: PhaseResultsEmpty}
		return domain.Message{Text: NothingFound}, true
	default:
		e.courses = courses
		e.state = State{Phase: PhaseResultsReady}
		return domain.Message{Text: ResultsLeadIn}, true
	}
}

// State returns the current machine position.
func (e *Engine) State() State {
	return e.state
}

// Courses returns the staged results for a ready conversation.
func (e *Engine) Courses() []domain.Course {
	return e.courses
}

// Answers returns the slot set as filled so far.
func (e *Engine) Answers() domain.Answers {
	return e.answers.Answers()
}

// Loading reports whether a search is in flight. Handlers surface a
// loading indicator and suppress duplicate triggers while this holds.
func (e *Engine) Loading() bool {
	return e.state.Phase == PhaseSearching
}

// InputWithdrawn reports whether free-text input is no longer accepted.
func (e *Engine) InputWithdrawn() bool {
	return e.state.Phase != PhaseAwaitingSlot
}

// FromLog reconstructs the machine position from a stored message log:
// answers are re-derived from user messages in slot order, staged courses
// are re-parsed from the sentinel-encoded message if present, and the
// phase is recomputed. A complete slot set whose outcome never made it
// into the log is treated as a failed search; the conversation cannot be
// resumed, matching the no-automatic-retry rule.
func FromLog(messages []domain.Message) *Engine {
	e := New()

	slot := 0
	for _, m := range messages {
		if m.IsUser && slot < SlotCount {
			e.answers.Set(slot, m.Text)
			slot++
		}
	}

	if !e.answers.Complete() {
		e.state = State{Phase: PhaseAwaitingSlot, Slot: e.answers.Filled()}
		return e
	}

	e.searchFired = true
	for _, m := range messages {
		if m.IsUser {
			continue
		}
		switch {
		case domain.IsCoursesMessage(m.Text):
			if courses, err := domain.DecodeCourses(m.Text); err == nil && len(courses) > 0 {
				e.courses = courses
				e.state = State{Phase: PhaseResultsReady}
				return e
			}
		case m.Text == NothingFound:
			e.state = State{Phase: PhaseResultsEmpty}
			return e
		case m.Text == SearchFailed:
			e.state = State{Phase: PhaseResultsError}
			return e
		}
	}

	e.state = State{Phase: PhaseResultsError}
	return e
}
