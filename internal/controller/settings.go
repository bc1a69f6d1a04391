package controller

import (
	"fmt"

	"github.com/ayusman/fingerpaint/internal/canvas"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// Brush thickness bounds in canvas pixels.
const (
	MinThickness     = 1
	MaxThickness     = 50
	DefaultThickness = 3
)

// Settings is the user-controlled tool state. It only changes through its
// methods so that the eraser/color exclusivity holds.
type Settings struct {
	color     int
	eraser    bool
	thickness int
	preview   bool
}

// DefaultSettings returns red ink, the default thickness and preview on.
func DefaultSettings() Settings {
	return Settings{thickness: DefaultThickness, preview: true}
}

// Color returns the active palette index.
func (s Settings) Color() int { return s.color }

// Eraser reports whether the eraser is active.
func (s Settings) Eraser() bool { return s.eraser }

// Thickness returns the brush thickness.
func (s Settings) Thickness() int { return s.thickness }

// Preview reports whether the camera preview is shown.
func (s Settings) Preview() bool { return s.preview }

// SelectColor activates palette entry i and leaves eraser mode.
func (s *Settings) SelectColor(i int) error {
	if i < 0 || i >= len(ui.Palette) {
		return fmt.Errorf("%w: palette index %d", ErrInvalidCommand, i)
	}
	s.color = i
	s.eraser = false
	return nil
}

// ToggleEraser flips eraser mode.
func (s *Settings) ToggleEraser() {
	s.eraser = !s.eraser
}

// AdjustThickness changes the thickness by delta, clamped to
// [MinThickness, MaxThickness].
func (s *Settings) AdjustThickness(delta int) {
	s.SetThickness(s.thickness + delta)
}

// SetThickness sets the thickness, clamped to [MinThickness, MaxThickness].
func (s *Settings) SetThickness(n int) {
	s.thickness = min(max(n, MinThickness), MaxThickness)
}

// TogglePreview flips the camera preview.
func (s *Settings) TogglePreview() {
	s.preview = !s.preview
}

// SetPreview sets the camera preview flag.
func (s *Settings) SetPreview(on bool) {
	s.preview = on
}

// Brush returns the brush the canvas should paint with.
func (s Settings) Brush() canvas.Brush {
	return canvas.Brush{
		Color:     ui.Palette[s.color].Color,
		Thickness: s.thickness,
		Eraser:    s.eraser,
	}
}

// UIState returns the state shown on the toolbar.
func (s Settings) UIState(status Status) ui.State {
	return ui.State{
		Color:     s.color,
		Eraser:    s.eraser,
		Thickness: s.thickness,
		Status:    status.String(),
	}
}
