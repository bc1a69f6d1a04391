package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultMotionThreshold is the percentage of changed pixels that counts as motion.
const DefaultMotionThreshold = 1.0

// Frames are compared at this width; height keeps the aspect ratio.
const (
	motionWidth = 160
	motionBlur  = 5
	motionDiff  = 25
)

// MotionDetector measures how much of the scene changed since the previous
// frame, on a blurred grayscale thumbnail.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	closed    bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is a percentage of
// pixels; values <= 0 select DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Threshold returns the motion threshold in percent.
func (m *MotionDetector) Threshold() float64 {
	return m.threshold
}

// Detect compares frame with the previous one and reports whether the changed
// share exceeds the threshold, together with that share in percent. The first
// frame after construction or Reset only primes the detector.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || frame == nil || frame.Empty() {
		return false, 0
	}

	cur := thumbnail(frame)
	defer cur.Close()

	if !m.primed || m.prev.Rows() != cur.Rows() || m.prev.Cols() != cur.Cols() {
		cur.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, m.prev, &diff)
	gocv.Threshold(diff, &diff, motionDiff, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	cur.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// thumbnail returns a small blurred grayscale copy of frame.
func thumbnail(frame *gocv.Mat) gocv.Mat {
	h := frame.Rows() * motionWidth / max(frame.Cols(), 1)
	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, image.Pt(motionWidth, max(h, 1)), 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(motionBlur, motionBlur), 0, 0, gocv.BorderDefault)
	return gray
}

// Reset forgets the previous frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
}

// Close releases resources used by the motion detector. It is safe to call twice.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.prev.Close()
	m.closed = true
	m.primed = false
}
