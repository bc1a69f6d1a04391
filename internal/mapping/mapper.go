// Package mapping converts detector coordinates into canvas pixels.
package mapping

import (
	"errors"
	"fmt"
	"image"

	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/filter"
)

// ErrInvalidSize is returned when either resolution has a non-positive side.
var ErrInvalidSize = errors.New("invalid size")

// Mapper scales source-frame pixels onto the canvas. X and Y scale independently.
type Mapper struct {
	src image.Point
	dst image.Point
}

// New creates a mapper from a source frame of size src to a canvas of size dst.
func New(src, dst image.Point) (Mapper, error) {
	if src.X <= 0 || src.Y <= 0 {
		return Mapper{}, fmt.Errorf("%w: source %v", ErrInvalidSize, src)
	}
	if dst.X <= 0 || dst.Y <= 0 {
		return Mapper{}, fmt.Errorf("%w: destination %v", ErrInvalidSize, dst)
	}
	return Mapper{src: src, dst: dst}, nil
}

// Source returns the source frame size.
func (m Mapper) Source() image.Point { return m.src }

// Dest returns the canvas size.
func (m Mapper) Dest() image.Point { return m.dst }

// Map converts a filtered source-space point into canvas pixels, truncating
// toward zero.
func (m Mapper) Map(p filter.Point) image.Point {
	return image.Pt(
		int(p.X*float64(m.dst.X)/float64(m.src.X)),
		int(p.Y*float64(m.dst.Y)/float64(m.src.Y)),
	)
}

// Raw converts a normalized landmark position into source-frame pixels.
func (m Mapper) Raw(p detector.Point3D) image.Point {
	return image.Pt(int(p.X*float64(m.src.X)), int(p.Y*float64(m.src.Y)))
}

// Point converts an integer source pixel into a filter sample.
func Point(p image.Point) filter.Point {
	return filter.Point{X: float64(p.X), Y: float64(p.Y)}
}
