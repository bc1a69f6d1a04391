package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a filter configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid filter config")

// Mode selects the per-channel smoother.
type Mode string

const (
	ModeAdaptive    Mode = "adaptive"
	ModeExponential Mode = "exponential"
	ModeNone        Mode = "none"
)

// Config tunes a Chain. Distances are in source-frame pixels, since the filter
// runs before coordinates are mapped onto the canvas.
type Config struct {
	Mode Mode

	// Adaptive filter parameters.
	Rate             float64 // samples per second
	MinCutoff        float64
	Beta             float64
	DerivativeCutoff float64

	// Exponential filter weight of the newest sample, in (0, 1].
	Alpha float64

	// Outlier guard parameters.
	MaxJump    float64
	DeadZone   float64
	MaxRejects int

	// Window is the trailing moving-average length over guarded positions;
	// 0 or 1 disables it.
	Window int
}

// DefaultConfig returns the tuning used for a 640x480 camera at 30 fps.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeAdaptive,
		Rate:             30,
		MinCutoff:        1.0,
		Beta:             0.007,
		DerivativeCutoff: 1.0,
		Alpha:            0.45,
		MaxJump:          80,
		DeadZone:         2,
		MaxRejects:       3,
		Window:           5,
	}
}

// Validate checks that the configuration describes a usable chain.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeAdaptive:
		if c.Rate <= 0 || c.MinCutoff <= 0 || c.DerivativeCutoff <= 0 || c.Beta < 0 {
			return fmt.Errorf("%w: adaptive filter needs positive rate and cutoffs, non-negative beta", ErrInvalidConfig)
		}
	case ModeExponential:
		if c.Alpha <= 0 || c.Alpha > 1 {
			return fmt.Errorf("%w: alpha %v outside (0, 1]", ErrInvalidConfig, c.Alpha)
		}
	case ModeNone:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.MaxJump < 0 || c.DeadZone < 0 || c.MaxRejects < 0 || c.Window < 0 {
		return fmt.Errorf("%w: negative guard or window parameter", ErrInvalidConfig)
	}
	return nil
}

func (c Config) newSmoother() Smoother {
	switch c.Mode {
	case ModeAdaptive:
		return NewAdaptive(c.Rate, c.MinCutoff, c.Beta, c.DerivativeCutoff)
	case ModeExponential:
		return NewExponential(c.Alpha)
	default:
		return passthrough{}
	}
}

// Sample is the outcome of pushing one raw position through a Chain.
type Sample struct {
	Point   Point
	Verdict Verdict
	// Valid is false when the sample carried no usable information; the pen
	// must not move.
	Valid bool
	// Restart is true when history was discarded to follow the hand; any stroke
	// in progress must be lifted before Point is committed.
	Restart bool
}

// Chain composes OutlierGuard, a trailing moving average of the guarded
// positions and a per-channel smoother into the filter for one fingertip.
type Chain struct {
	guard      *OutlierGuard
	x, y       Smoother
	avgX, avgY *MovingAverage

	last   Point
	primed bool
}

// NewChain builds a chain from cfg.
func NewChain(cfg Config) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chain{
		guard: NewOutlierGuard(cfg.MaxJump, cfg.DeadZone, cfg.MaxRejects),
		x:     cfg.newSmoother(),
		y:     cfg.newSmoother(),
		avgX:  NewMovingAverage(cfg.Window),
		avgY:  NewMovingAverage(cfg.Window),
	}, nil
}

// Process filters one raw position.
func (c *Chain) Process(raw Point) Sample {
	p, verdict := c.guard.Check(raw)

	switch verdict {
	case Rejected:
		return Sample{Point: c.last, Verdict: verdict, Valid: false}
	case Reseeded:
		c.resetSmoothing()
	}

	// Held samples still run through the smoothers so the output keeps
	// settling onto the resting position.
	out := Point{
		X: c.x.Filter(c.avgX.Filter(p.X)),
		Y: c.y.Filter(c.avgY.Filter(p.Y)),
	}
	c.last = out
	c.primed = true

	return Sample{Point: out, Verdict: verdict, Valid: true, Restart: verdict == Reseeded}
}

// Last returns the most recent output and whether there is one.
func (c *Chain) Last() (Point, bool) {
	return c.last, c.primed
}

// Reset clears every stage so that the next sample starts fresh.
func (c *Chain) Reset() {
	c.guard.Reset()
	c.resetSmoothing()
}

func (c *Chain) resetSmoothing() {
	c.x.Reset()
	c.y.Reset()
	c.avgX.Reset()
	c.avgY.Reset()
	c.last = Point{}
	c.primed = false
}
