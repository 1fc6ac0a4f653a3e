package conversation

import "github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/domain"

// Accumulator collects the three intake answers, one slot per submitted
// message, in slot order. Free-text content is opaque: it is stored and
// forwarded verbatim.
type Accumulator struct {
	values [SlotCount]string
}

// Set writes an answer into the given slot. Out-of-range slots are
// ignored; the machine only ever sets the slot it is awaiting.
func (a *Accumulator) Set(slot int, value string) {
	if slot < 0 || slot >= SlotCount {
		return
	}
	a.values[slot] = value
}

// Filled returns how many leading slots hold non-empty answers.
func (a *Accumulator) Filled() int {
	for i, v := range a.values {
		if v == "" {
			return i
		}
	}
	return SlotCount
}

// Complete reports whether every slot holds a non-empty answer.
func (a *Accumulator) Complete() bool {
	return a.Filled() == SlotCount
}

// Answers returns the structured answer set for the course search.
func (a *Accumulator) Answers() domain.Answers {
	return domain.Answers{
		Area:          a.values[0],
		CurrentLevel:  a.values[1],
		DesiredSkills: a.values[2],
	}
}
