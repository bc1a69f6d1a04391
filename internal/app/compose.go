package app

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerpaint/internal/canvas"
	"github.com/ayusman/fingerpaint/internal/controller"
	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// Preview geometry: a half-size camera inset in the bottom right corner.
const (
	previewDivisor = 2
	previewMargin  = 10
	previewBorder  = 2
)

var (
	eraserCursor  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	borderColor   = color.RGBA{A: 255}
	boneColor     = color.RGBA{G: 255, A: 255}
	landmarkColor = color.RGBA{R: 255, A: 255}
)

// compose builds the display for one frame: canvas, camera inset, toolbar and
// cursor. The caller closes the returned Mat.
func (a *App) compose(frame *gocv.Mat, hands []detector.HandLandmarks, res controller.Result) gocv.Mat {
	display := a.ctrl.Canvas().Mat().Clone()
	s := a.ctrl.Settings()

	if s.Preview() {
		overlayPreview(&display, frame, hands, a.ctrl.Layout().Toolbar.Max.Y)
	}

	ui.Render(&display, a.ctrl.Layout(), s.UIState(res.Status))

	if res.Cursor.Visible {
		b := s.Brush()
		c, r := b.Color, cursorRadius(b)
		if b.Eraser {
			c = eraserCursor
		}
		ui.DrawCursor(&display, res.Cursor.Point, r, c, res.Cursor.InkActive)
	}
	return display
}

func cursorRadius(b canvas.Brush) int {
	r := b.Thickness
	if b.Eraser {
		r *= canvas.EraserScale
	}
	return max(r/2, 5)
}

// previewRect returns where the camera inset goes on a display of the given size.
func previewRect(display image.Point, toolbar int) (image.Rectangle, bool) {
	w, h := display.X/previewDivisor, display.Y/previewDivisor
	r := image.Rect(display.X-w-previewMargin, display.Y-h-previewMargin, display.X-previewMargin, display.Y-previewMargin)
	if w <= 0 || h <= 0 || r.Min.X < 0 || r.Min.Y < toolbar {
		return image.Rectangle{}, false
	}
	return r, true
}

// overlayPreview shrinks frame into the bottom right corner of display and
// draws the hand skeleton over it.
func overlayPreview(display, frame *gocv.Mat, hands []detector.HandLandmarks, toolbar int) {
	size := image.Pt(display.Cols(), display.Rows())
	r, ok := previewRect(size, toolbar)
	if !ok {
		return
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, r.Size(), 0, 0, gocv.InterpolationLinear)

	for i := range hands {
		drawHand(&small, &hands[i])
	}

	gocv.Rectangle(display, r.Inset(-previewBorder), borderColor, previewBorder)
	roi := display.Region(r)
	defer roi.Close()
	small.CopyTo(&roi)
}

func drawHand(mat *gocv.Mat, h *detector.HandLandmarks) {
	w, ht := float64(mat.Cols()), float64(mat.Rows())
	px := func(j detector.Joint) image.Point {
		p := h.At(j)
		return image.Pt(int(p.X*w), int(p.Y*ht))
	}
	for _, b := range detector.Connections {
		gocv.Line(mat, px(b.From), px(b.To), boneColor, 1)
	}
	for j := detector.Joint(0); j < detector.NumLandmarks; j++ {
		gocv.Circle(mat, px(j), 2, landmarkColor, -1)
	}
}
