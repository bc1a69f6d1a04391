// Package filter smooths noisy fingertip positions and rejects outlier jumps.
//
// All filters are single-writer and keep only their own memory; feeding the
// same samples into two freshly reset filters yields the same output.
package filter

import "math"

// Point is a position in source-frame pixels.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Verdict is the OutlierGuard decision for one sample.
type Verdict int

const (
	// Accepted samples update the guard and flow on to smoothing.
	Accepted Verdict = iota
	// Held samples moved less than the dead zone; the previous position stands.
	Held
	// Rejected samples jumped implausibly far; the previous position stands and
	// the caller must not advance pen state.
	Rejected
	// Reseeded samples followed too many rejections in a row and became the new
	// anchor. The caller must start a fresh stroke.
	Reseeded
)

// String returns the lowercase verdict name.
func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Held:
		return "held"
	case Rejected:
		return "rejected"
	case Reseeded:
		return "reseeded"
	default:
		return "unknown"
	}
}

// OutlierGuard rejects single-frame jumps and absorbs micro-tremor.
type OutlierGuard struct {
	maxJump    float64
	deadZone   float64
	maxRejects int

	prev     Point
	velocity float64
	primed   bool
	rejects  int
}

// NewOutlierGuard creates a guard. maxJump <= 0 disables rejection, deadZone <= 0
// disables holding and maxRejects <= 0 never re-anchors.
func NewOutlierGuard(maxJump, deadZone float64, maxRejects int) *OutlierGuard {
	return &OutlierGuard{
		maxJump:    maxJump,
		deadZone:   deadZone,
		maxRejects: maxRejects,
	}
}

// Check classifies p against the last accepted position and returns the
// position the caller should use.
func (g *OutlierGuard) Check(p Point) (Point, Verdict) {
	if !g.primed {
		g.prev = p
		g.velocity = 0
		g.primed = true
		return p, Accepted
	}

	d := p.Dist(g.prev)

	// A big jump while we were barely moving is almost always a mis-detection.
	if g.maxJump > 0 && d > g.maxJump && g.velocity < g.maxJump*0.5 {
		g.rejects++
		if g.maxRejects > 0 && g.rejects >= g.maxRejects {
			g.prev = p
			g.velocity = 0
			g.rejects = 0
			return p, Reseeded
		}
		return g.prev, Rejected
	}
	g.rejects = 0

	if d < g.deadZone {
		return g.prev, Held
	}

	g.velocity = d
	g.prev = p
	return p, Accepted
}

// Velocity returns the displacement of the last accepted step.
func (g *OutlierGuard) Velocity() float64 {
	return g.velocity
}

// Reset forgets all history; the next sample is treated as the first.
func (g *OutlierGuard) Reset() {
	g.prev = Point{}
	g.velocity = 0
	g.primed = false
	g.rejects = 0
}
