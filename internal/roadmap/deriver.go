// Package roadmap derives the progress-graph rendering model: connecting
// line endpoints and colors between consecutive course nodes, and the
// lock state of each node.
package roadmap

// Line colors by pair progress. The values are the product palette and
// are part of the API contract with the frontend.
const (
	ColorComplete   = "#6BE0A4"
	ColorTransition = "#9FDDFF"
	ColorNeutral    = "rgb(255, 255, 255, 0.7)"
	ColorDefault    = "#2196F3"
)

// LineColor picks the color of the line between two consecutive nodes
// with progress fractions a and b. Rules are evaluated in order: both
// done, exactly one done, the pair straddling the untouched boundary,
// and everything else. The function is total and symmetric in its
// arguments.
func LineColor(a, b float64) string {
	if a == 1 && b == 1 {
		return ColorComplete
	}
	if a == 1 || b == 1 {
		return ColorTransition
	}
	if (a != 0 && b == 0) || (a == 0 && b != 0) {
		return ColorNeutral
	}
	return ColorDefault
}

// LockStates computes which nodes are disabled, scanning left to right.
// A single node is never locked. Two passes run over the same array and
// union their lock sets: the first locks everything after the first
// partially-completed node; the second, which applies only when no node
// is partial, locks everything after the first not-fully-done node. The
// second pass can only add locks, never clear one.
func LockStates(progresses []float64) []bool {
	if len(progresses) == 0 {
		return nil
	}
	states := make([]bool, len(progresses))
	if len(progresses) == 1 {
		return states
	}

	foundInProgress := false
	for i, p := range progresses {
		if foundInProgress {
			states[i] = true
		} else if p > 0 && p < 1 {
			foundInProgress = true
		}
	}

	if !foundInProgress {
		firstNotDone := -1
		for i, p := range progresses {
			if p != 1 {
				firstNotDone = i
				break
			}
		}
		if firstNotDone != -1 {
			for i := firstNotDone + 1; i < len(progresses); i++ {
				states[i] = true
			}
		}
	}

	return states
}

// Rect is a rendered node's bounding box in viewport coordinates, as
// measured by the client.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) centerX() float64 { return r.Left + r.Width/2 }
func (r Rect) centerY() float64 { return r.Top + r.Height/2 }

// Line connects the centers of two consecutive nodes, relative to the
// shared container origin. Derived and ephemeral: recomputed on every
// layout-affecting event, never persisted.
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color string  `json:"color"`
}

// Lines derives the connecting lines for an ordered node sequence.
// progresses supplies the per-node completion fractions; missing entries
// count as zero, matching how an unmeasured node renders.
func Lines(container Rect, nodes []Rect, progresses []float64) []Line {
	var lines []Line
	for i := 0; i+1 < len(nodes); i++ {
		var a, b float64
		if i < len(progresses) {
			a = progresses[i]
		}
		if i+1 < len(progresses) {
			b = progresses[i+1]
		}
		lines = append(lines, Line{
			X1:    nodes[i].centerX() - container.Left,
			Y1:    nodes[i].centerY() - container.Top,
			X2:    nodes[i+1].centerX() - container.Left,
			Y2:    nodes[i+1].centerY() - container.Top,
			Color: LineColor(a, b),
		})
	}
	return lines
}
