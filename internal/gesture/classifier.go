// Package gesture classifies hand postures into painting intents.
package gesture

import (
	"github.com/ayusman/fingerpaint/internal/detector"
)

// Intent is the classified meaning of a hand posture for one frame.
type Intent int

const (
	// Idle means no recognized posture, or no hand at all.
	Idle Intent = iota
	// Draw is the index-finger-only posture.
	Draw
	// Select is the open-palm posture used to pick colors and press buttons.
	Select
)

// String returns the lowercase intent name.
func (i Intent) String() string {
	switch i {
	case Draw:
		return "draw"
	case Select:
		return "select"
	default:
		return "idle"
	}
}

// Finger identifies one of the four non-thumb fingers.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Pinky
)

// Fingers lists the fingers evaluated by the classifier.
var Fingers = [...]Finger{Index, Middle, Ring, Pinky}

// MinSelectFingers is how many fingers must be up for Select. Four rather than
// five so that a thumb or a flickering finger does not drop the posture.
const MinSelectFingers = 4

var fingerJoints = [...]struct{ tip, pip detector.Joint }{
	Index:  {detector.IndexTip, detector.IndexPIP},
	Middle: {detector.MiddleTip, detector.MiddlePIP},
	Ring:   {detector.RingTip, detector.RingPIP},
	Pinky:  {detector.PinkyTip, detector.PinkyPIP},
}

// String returns the lowercase finger name.
func (f Finger) String() string {
	switch f {
	case Index:
		return "index"
	case Middle:
		return "middle"
	case Ring:
		return "ring"
	case Pinky:
		return "pinky"
	default:
		return "unknown"
	}
}

// FingerUp reports whether the fingertip is above its PIP joint.
// Source coordinates grow downward, so "above" is the smaller Y.
func FingerUp(h *detector.HandLandmarks, f Finger) bool {
	j := fingerJoints[f]
	return h.Points[j.tip].Y < h.Points[j.pip].Y
}

// FingerDown reports whether the fingertip is strictly below its PIP joint.
// A tip level with its joint is neither up nor down.
func FingerDown(h *detector.HandLandmarks, f Finger) bool {
	j := fingerJoints[f]
	return h.Points[j.tip].Y > h.Points[j.pip].Y
}

// CountUp returns how many of the four fingers are up.
func CountUp(h *detector.HandLandmarks) int {
	n := 0
	for _, f := range Fingers {
		if FingerUp(h, f) {
			n++
		}
	}
	return n
}

// Classify maps a hand snapshot to an intent. A nil hand is Idle.
// The thumb is never evaluated. Draw is checked before Select.
func Classify(h *detector.HandLandmarks) Intent {
	if h == nil {
		return Idle
	}

	if FingerUp(h, Index) && FingerDown(h, Middle) && FingerDown(h, Ring) && FingerDown(h, Pinky) {
		return Draw
	}

	if CountUp(h) >= MinSelectFingers {
		return Select
	}

	return Idle
}
