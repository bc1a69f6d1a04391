package gesture

import "github.com/ayusman/fingerpaint/internal/detector"

// DefaultDepthThreshold is the fingertip depth, in hand-size units, at which
// ink starts flowing when depth gating is enabled.
const DefaultDepthThreshold = 0.3

// DepthGate separates hovering from "touching" using only landmark depth.
type DepthGate struct {
	// Threshold is the minimum Depth for Touching to report true.
	Threshold float64
}

// Depth returns how far the index fingertip sits in front of the wrist,
// measured in units of the wrist to middle-MCP distance. Larger is closer to
// the camera. A nil hand has depth 0.
func (g DepthGate) Depth(h *detector.HandLandmarks) float64 {
	n := h.Normalize()
	if n == nil {
		return 0
	}
	return -n.Points[detector.IndexTip].Z
}

// Touching reports whether the fingertip is close enough to lay ink.
func (g DepthGate) Touching(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	return g.Depth(h) >= g.Threshold
}
