// Package ui lays out the toolbar and answers hit tests against it.
package ui

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Base toolbar geometry at scale 1.0, in canvas pixels.
const (
	BaseToolbarHeight = 80
	BaseButtonWidth   = 100
	BaseGap           = 10

	// MinWidth is the narrowest canvas that still fits every region.
	MinWidth = 320
)

// ErrTooNarrow is returned by NewLayout for widths below MinWidth.
var ErrTooNarrow = errors.New("canvas too narrow for toolbar")

// Swatch is one palette entry.
type Swatch struct {
	Name  string
	Color color.RGBA
}

// Palette is the fixed set of selectable ink colors.
var Palette = [...]Swatch{
	{"Red", color.RGBA{R: 255, A: 255}},
	{"Green", color.RGBA{G: 255, A: 255}},
	{"Blue", color.RGBA{B: 255, A: 255}},
	{"Yellow", color.RGBA{R: 255, G: 255, A: 255}},
	{"Magenta", color.RGBA{R: 255, B: 255, A: 255}},
	{"Cyan", color.RGBA{G: 255, B: 255, A: 255}},
	{"Black", color.RGBA{A: 255}},
	{"White", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
}

// ActionKind enumerates what a hit on the toolbar does.
type ActionKind int

const (
	None ActionKind = iota
	SelectColor
	ToggleEraser
	Clear
)

// String returns the action kind name.
func (k ActionKind) String() string {
	switch k {
	case None:
		return "none"
	case SelectColor:
		return "select_color"
	case ToggleEraser:
		return "toggle_eraser"
	case Clear:
		return "clear"
	default:
		return "unknown"
	}
}

// Action is the result of a hit test. Color is the palette index for
// SelectColor and zero otherwise.
type Action struct {
	Kind  ActionKind
	Color int
}

// NoAction is returned for points outside every region.
var NoAction = Action{Kind: None}

// String returns a short human readable form such as "select_color(2)".
func (a Action) String() string {
	if a.Kind == SelectColor {
		return fmt.Sprintf("%s(%d)", a.Kind, a.Color)
	}
	return a.Kind.String()
}

// Region is a selectable rectangle. Bounds is half-open, as image.Rectangle.
type Region struct {
	Bounds image.Rectangle
	Action Action
}

// Layout is the toolbar geometry for one canvas width. It is fully populated
// by NewLayout and immutable afterwards.
type Layout struct {
	Width   int
	Scale   float64
	Toolbar image.Rectangle
	Regions []Region
}

// ScaleFor returns the size tier for a canvas width.
func ScaleFor(width int) float64 {
	switch {
	case width >= 1600:
		return 1.5
	case width >= 1000:
		return 1.25
	default:
		return 1.0
	}
}

func scaled(base int, scale float64) int {
	return int(math.Round(float64(base) * scale))
}

// NewLayout computes the toolbar for a canvas of the given width: palette
// cells from the left edge, then the eraser button, then the clear button at
// the far right.
func NewLayout(width int) (Layout, error) {
	if width < MinWidth {
		return Layout{}, fmt.Errorf("%w: %d < %d", ErrTooNarrow, width, MinWidth)
	}

	scale := ScaleFor(width)
	height := scaled(BaseToolbarHeight, scale)
	button := scaled(BaseButtonWidth, scale)
	gap := scaled(BaseGap, scale)

	clearBox := image.Rect(width-gap-button, gap, width-gap, height-gap)
	eraserBox := image.Rect(clearBox.Min.X-gap-button, gap, clearBox.Min.X-gap, height-gap)

	cell := (eraserBox.Min.X - gap) / len(Palette)
	regions := make([]Region, 0, len(Palette)+2)
	for i := range Palette {
		regions = append(regions, Region{
			Bounds: image.Rect(i*cell, 0, (i+1)*cell, height),
			Action: Action{Kind: SelectColor, Color: i},
		})
	}
	regions = append(regions,
		Region{Bounds: eraserBox, Action: Action{Kind: ToggleEraser}},
		Region{Bounds: clearBox, Action: Action{Kind: Clear}},
	)

	return Layout{
		Width:   width,
		Scale:   scale,
		Toolbar: image.Rect(0, 0, width, height),
		Regions: regions,
	}, nil
}

// HitTest returns the action of the region containing p, or NoAction.
func (l Layout) HitTest(p image.Point) Action {
	for _, r := range l.Regions {
		if p.In(r.Bounds) {
			return r.Action
		}
	}
	return NoAction
}

// InToolbar reports whether p lies in the toolbar band.
func (l Layout) InToolbar(p image.Point) bool {
	return p.In(l.Toolbar)
}

// Bounds returns the rectangle of the region bound to a.
func (l Layout) Bounds(a Action) (image.Rectangle, bool) {
	for _, r := range l.Regions {
		if r.Action == a {
			return r.Bounds, true
		}
	}
	return image.Rectangle{}, false
}
