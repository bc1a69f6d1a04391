package ui

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	highlight    = color.RGBA{G: 255, A: 255}
	buttonIdle   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	buttonActive = color.RGBA{R: 100, G: 255, B: 100, A: 255}
	labelDark    = color.RGBA{A: 255}
	labelLight   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	statusColor  = color.RGBA{G: 255, A: 255}
)

// Instructions are printed along the bottom edge of the display.
var Instructions = []string{
	"Point index finger to draw",
	"Open palm (4+ fingers) to pick a color or button",
	"s save | c clear | e eraser | p preview | +/- size | q quit",
}

// State is the tool state shown on the toolbar.
type State struct {
	Color     int
	Eraser    bool
	Thickness int
	Status    string
}

// Render draws the toolbar, the status line and the instructions onto mat.
func Render(mat *gocv.Mat, l Layout, s State) {
	fontScale := 0.5 * l.Scale

	for _, r := range l.Regions {
		box := inclusive(r.Bounds)
		switch r.Action.Kind {
		case SelectColor:
			sw := Palette[r.Action.Color]
			gocv.Rectangle(mat, box, sw.Color, -1)
			if r.Action.Color == s.Color && !s.Eraser {
				gocv.Rectangle(mat, box, highlight, 5)
			}
			gocv.PutText(mat, sw.Name[:3], image.Pt(box.Min.X+5, box.Min.Y+20),
				gocv.FontHersheySimplex, fontScale, labelFor(sw.Color), 2)
		case ToggleEraser:
			button(mat, box, "ERASE", s.Eraser, fontScale)
		case Clear:
			button(mat, box, "CLEAR", false, fontScale)
		}
	}

	h := mat.Rows()
	if s.Status != "" {
		gocv.PutText(mat, s.Status, image.Pt(10, h-100), gocv.FontHersheySimplex, 0.7*l.Scale, statusColor, 2)
	}
	for i, line := range Instructions {
		gocv.PutText(mat, line, image.Pt(10, h-80+i*25), gocv.FontHersheySimplex, fontScale, labelLight, 1)
	}
}

func button(mat *gocv.Mat, box image.Rectangle, label string, active bool, fontScale float64) {
	fill := buttonIdle
	if active {
		fill = buttonActive
	}
	gocv.Rectangle(mat, box, fill, -1)

	size := gocv.GetTextSize(label, gocv.FontHersheySimplex, fontScale, 2)
	org := image.Pt(
		box.Min.X+(box.Dx()-size.X)/2,
		box.Min.Y+(box.Dy()+size.Y)/2,
	)
	gocv.PutText(mat, label, org, gocv.FontHersheySimplex, fontScale, labelDark, 2)
}

// DrawCursor marks the fingertip. A filled dot in the brush color means ink is
// flowing; a hollow ring means the hand is hovering.
func DrawCursor(mat *gocv.Mat, p image.Point, radius int, c color.RGBA, inkActive bool) {
	if radius < 2 {
		radius = 2
	}
	if inkActive {
		gocv.Circle(mat, p, radius, c, -1)
		return
	}
	gocv.Circle(mat, p, radius+4, c, 2)
}

// inclusive converts a half-open rectangle into the inclusive corners OpenCV
// expects.
func inclusive(r image.Rectangle) image.Rectangle {
	return image.Rect(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
}

// labelFor picks a label color readable on top of bg.
func labelFor(bg color.RGBA) color.RGBA {
	luma := 299*int(bg.R) + 587*int(bg.G) + 114*int(bg.B)
	if luma > 128*1000 {
		return labelDark
	}
	return labelLight
}
