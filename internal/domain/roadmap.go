package domain

// RoadmapStatus labels a roadmap's place in the user's plan.
type RoadmapStatus string

const (
	RoadmapCurrent RoadmapStatus = "current"
	RoadmapNotNow  RoadmapStatus = "notNow"
	RoadmapDone    RoadmapStatus = "done"
)

// Roadmap is an ordered sequence of courses with per-course completion
// fractions, visualized as a connected node graph. Switching the displayed
// roadmap is a pure selection, not a mutation.
type Roadmap struct {
	ID      int           `json:"id"`
	Status  RoadmapStatus `json:"status"`
	Name    string        `json:"name"`
	Courses []Course      `json:"courses"`
}

// Progresses extracts the per-course completion fractions in node order.
func (r *Roadmap) Progresses() []float64 {
	out := make([]float64, len(r.Courses))
	for i, c := range r.Courses {
		out[i] = c.Progress
	}
	return out
}
