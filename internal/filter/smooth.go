package filter

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Smoother filters one scalar channel.
type Smoother interface {
	Filter(v float64) float64
	Reset()
}

// Adaptive is a one-euro filter: the cutoff frequency rises with the smoothed
// speed of the signal, trading jitter for lag as movement gets faster.
type Adaptive struct {
	rate      float64
	minCutoff float64
	beta      float64
	dCutoff   float64

	prev   float64
	dPrev  float64
	primed bool
}

// NewAdaptive creates an adaptive-cutoff filter. rate is the sample rate in Hz.
func NewAdaptive(rate, minCutoff, beta, dCutoff float64) *Adaptive {
	return &Adaptive{
		rate:      rate,
		minCutoff: minCutoff,
		beta:      beta,
		dCutoff:   dCutoff,
	}
}

// alpha converts a cutoff frequency into a blending weight.
func (a *Adaptive) alpha(cutoff float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	te := 1.0 / a.rate
	return 1.0 / (1.0 + tau/te)
}

// Filter returns the smoothed value for x. The first sample passes through.
func (a *Adaptive) Filter(x float64) float64 {
	if !a.primed {
		a.prev = x
		a.dPrev = 0
		a.primed = true
		return x
	}

	dx := x - a.prev
	ad := a.alpha(a.dCutoff)
	dxSmooth := ad*dx + (1-ad)*a.dPrev

	cutoff := a.minCutoff + a.beta*math.Abs(dxSmooth)
	al := a.alpha(cutoff)
	filtered := al*x + (1-al)*a.prev

	a.prev = filtered
	a.dPrev = dxSmooth
	return filtered
}

// Reset forgets all history.
func (a *Adaptive) Reset() {
	a.prev = 0
	a.dPrev = 0
	a.primed = false
}

// Exponential is plain exponential smoothing, the cheap alternative to Adaptive.
type Exponential struct {
	alpha  float64
	value  float64
	primed bool
}

// NewExponential creates an exponential smoother. alpha is the weight of the
// new sample: 1 means no smoothing.
func NewExponential(alpha float64) *Exponential {
	return &Exponential{alpha: alpha}
}

// Filter returns the smoothed value for x. The first sample passes through.
func (e *Exponential) Filter(x float64) float64 {
	if !e.primed {
		e.value = x
		e.primed = true
		return x
	}
	e.value = e.alpha*x + (1-e.alpha)*e.value
	return e.value
}

// Reset forgets all history.
func (e *Exponential) Reset() {
	e.value = 0
	e.primed = false
}

// passthrough is the Smoother for ModeNone.
type passthrough struct{}

func (passthrough) Filter(v float64) float64 { return v }
func (passthrough) Reset()                   {}

// MovingAverage averages the last Size samples.
type MovingAverage struct {
	size int
	buf  []float64
}

// NewMovingAverage creates a trailing window of size samples. Sizes below 2
// pass values through.
func NewMovingAverage(size int) *MovingAverage {
	if size < 1 {
		size = 1
	}
	return &MovingAverage{
		size: size,
		buf:  make([]float64, 0, size),
	}
}

// Filter appends x to the window and returns the window mean.
func (m *MovingAverage) Filter(x float64) float64 {
	if m.size == 1 {
		return x
	}
	if len(m.buf) == m.size {
		copy(m.buf, m.buf[1:])
		m.buf = m.buf[:m.size-1]
	}
	m.buf = append(m.buf, x)
	return stat.Mean(m.buf, nil)
}

// Len returns how many samples are currently buffered.
func (m *MovingAverage) Len() int {
	return len(m.buf)
}

// Reset empties the window.
func (m *MovingAverage) Reset() {
	m.buf = m.buf[:0]
}
