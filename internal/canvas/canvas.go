// Package canvas owns the persistent paint raster and the pen state that
// decides whether the next point starts a new stroke or extends the current one.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// EraserScale multiplies the brush thickness while erasing.
const EraserScale = 3

// ErrInvalidSize is returned for non-positive canvas dimensions.
var ErrInvalidSize = errors.New("invalid canvas size")

// Brush describes how a stroke is painted.
type Brush struct {
	Color     color.RGBA
	Thickness int
	Eraser    bool
}

// Canvas is a 3-channel 8-bit raster (BGR byte order) with pen state.
// It is not safe for concurrent use; one goroutine owns it.
type Canvas struct {
	mat  gocv.Mat
	bg   color.RGBA
	last image.Point
	down bool
}

// New creates a canvas of w x h filled with bg.
func New(w, h int, bg color.RGBA) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return &Canvas{
		mat: gocv.NewMatWithSizeFromScalar(scalar(bg), h, w, gocv.MatTypeCV8UC3),
		bg:  bg,
	}, nil
}

func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

// Width returns the raster width in pixels.
func (c *Canvas) Width() int { return c.mat.Cols() }

// Height returns the raster height in pixels.
func (c *Canvas) Height() int { return c.mat.Rows() }

// Size returns the raster dimensions.
func (c *Canvas) Size() image.Point { return image.Pt(c.mat.Cols(), c.mat.Rows()) }

// Background returns the fill color used by Clear and the eraser.
func (c *Canvas) Background() color.RGBA { return c.bg }

// Stroke commits p with brush b. With the pen up it puts down a dot and lowers
// the pen; with the pen down it draws a segment from the last committed point.
// It reports whether any pixels were painted.
func (c *Canvas) Stroke(p image.Point, b Brush) bool {
	col, thickness := b.Color, b.Thickness
	if thickness < 1 {
		thickness = 1
	}
	if b.Eraser {
		col = c.bg
		thickness *= EraserScale
	}

	from := p
	if c.down {
		if p == c.last {
			return false
		}
		from = c.last
	}

	gocv.Line(&c.mat, from, p, col, thickness)
	c.last = p
	c.down = true
	return true
}

// Lift raises the pen; the next Stroke starts a disconnected stroke.
func (c *Canvas) Lift() {
	c.down = false
	c.last = image.Point{}
}

// PenDown reports whether a stroke is in progress.
func (c *Canvas) PenDown() bool { return c.down }

// Last returns the last committed point and whether the pen is down.
func (c *Canvas) Last() (image.Point, bool) { return c.last, c.down }

// Clear fills the raster with the background color and lifts the pen.
func (c *Canvas) Clear() {
	c.mat.SetTo(scalar(c.bg))
	c.Lift()
}

// Resize rescales the existing content to w x h with linear interpolation and
// lifts the pen. Invalid sizes leave the canvas untouched.
func (c *Canvas) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	c.Lift()
	if w == c.Width() && h == c.Height() {
		return nil
	}

	dst := gocv.NewMat()
	gocv.Resize(c.mat, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	c.mat.Close()
	c.mat = dst
	return nil
}

// At returns the color of pixel (x, y). Out of range reads return the zero color.
func (c *Canvas) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return color.RGBA{}
	}
	v := c.mat.GetVecbAt(y, x)
	return color.RGBA{R: v[2], G: v[1], B: v[0], A: 0xff}
}

// Bytes returns a copy of the raw BGR pixel data.
func (c *Canvas) Bytes() []byte {
	return c.mat.ToBytes()
}

// Image returns a copy of the raster as a Go image.
func (c *Canvas) Image() (image.Image, error) {
	return c.mat.ToImage()
}

// Mat exposes the underlying raster for read-only composition. Callers must not
// close or retain it across frames.
func (c *Canvas) Mat() *gocv.Mat {
	return &c.mat
}

// Clone returns an independent copy of the canvas, pen state included.
func (c *Canvas) Clone() *Canvas {
	return &Canvas{
		mat:  c.mat.Clone(),
		bg:   c.bg,
		last: c.last,
		down: c.down,
	}
}

// Close releases the raster.
func (c *Canvas) Close() error {
	return c.mat.Close()
}
