// Package domain contains core domain types for the SkillsNavigator application.
package domain

// Course represents one recommended course as returned by the catalog.
// The record is treated as an immutable value once received; ordering is
// the server-returned order.
type Course struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	CoverURL   string   `json:"cover_url"`
	Duration   int      `json:"duration"`
	Difficulty string   `json:"difficulty"`
	Price      int      `json:"price"`
	PupilsNum  int      `json:"pupils_num,omitempty"`
	Authors    []string `json:"authors"`
	Rating     int      `json:"rating"`
	URL        string   `json:"url"`
	Progress   float64  `json:"progress,omitempty"`
}

// Done reports whether the course has been fully completed.
func (c Course) Done() bool {
	return c.Progress == 1
}

// Untouched reports whether the course has not been started.
func (c Course) Untouched() bool {
	return c.Progress == 0
}

// Answers holds the three intake answers collected by the chat flow,
// in slot order. Free-text content is opaque and passed verbatim to the
// course search.
type Answers struct {
	Area          string `json:"area"`
	CurrentLevel  string `json:"current_level"`
	DesiredSkills string `json:"desired_skills"`
}
