// Package controller runs the per-frame state machine that turns hand landmarks
// into strokes on the canvas and actions on the toolbar.
//
// A Controller is owned by one goroutine. Other goroutines talk to it through
// commands queued by the app package.
package controller

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/fingerpaint/internal/canvas"
	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/filter"
	"github.com/ayusman/fingerpaint/internal/gesture"
	"github.com/ayusman/fingerpaint/internal/mapping"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// Status is the per-frame message shown to the user.
type Status int

const (
	NoHandDetected Status = iota
	ReadyToDraw
	Drawing
	MoveCloserToDraw
	SelectionMode
)

// String returns the display text for s.
func (s Status) String() string {
	switch s {
	case NoHandDetected:
		return "No hand detected"
	case ReadyToDraw:
		return "Ready to draw"
	case Drawing:
		return "Drawing"
	case MoveCloserToDraw:
		return "Move closer to draw"
	case SelectionMode:
		return "Selection mode"
	default:
		return "Unknown"
	}
}

// Config tunes a Controller.
type Config struct {
	Filter filter.Config

	// DepthGate requires the fingertip to be pushed towards the camera before
	// ink flows.
	DepthGate      bool
	DepthThreshold float64

	// ToolbarGuard keeps ink out of the toolbar band.
	ToolbarGuard bool

	Background color.RGBA
	Settings   Settings
}

// DefaultConfig returns the configuration used by the application.
func DefaultConfig() Config {
	return Config{
		Filter:         filter.DefaultConfig(),
		DepthThreshold: gesture.DefaultDepthThreshold,
		ToolbarGuard:   true,
		Background:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Settings:       DefaultSettings(),
	}
}

// Frame is one detector result together with the source frame size.
type Frame struct {
	Hands  []detector.HandLandmarks
	Width  int
	Height int
}

// Cursor is the fingertip indicator in canvas pixels.
type Cursor struct {
	Point     image.Point
	InkActive bool
	Visible   bool
}

// Result describes what one frame did.
type Result struct {
	Intent gesture.Intent
	Status Status
	Cursor Cursor
	// Action is the toolbar action applied this frame, if any.
	Action ui.Action
	// Verdict is the outlier guard decision for drawing frames.
	Verdict filter.Verdict
	// Painted reports whether the canvas changed.
	Painted bool
}

// Controller wires classifier, filter chain, mapper, canvas and toolbar.
type Controller struct {
	cfg      Config
	gate     gesture.DepthGate
	chain    *filter.Chain
	canvas   *canvas.Canvas
	layout   ui.Layout
	mapper   mapping.Mapper
	mapped   bool
	settings Settings

	hovered ui.Action
	cursor  Cursor
}

// New creates a controller drawing on a fresh canvas of the given size.
func New(cfg Config, size image.Point) (*Controller, error) {
	chain, err := filter.NewChain(cfg.Filter)
	if err != nil {
		return nil, err
	}
	layout, err := ui.NewLayout(size.X)
	if err != nil {
		return nil, err
	}
	cv, err := canvas.New(size.X, size.Y, cfg.Background)
	if err != nil {
		return nil, err
	}
	if cfg.Settings == (Settings{}) {
		cfg.Settings = DefaultSettings()
	}

	return &Controller{
		cfg:      cfg,
		gate:     gesture.DepthGate{Threshold: cfg.DepthThreshold},
		chain:    chain,
		canvas:   cv,
		layout:   layout,
		settings: cfg.Settings,
		hovered:  ui.NoAction,
	}, nil
}

// Canvas returns the canvas. It must only be used from the owning goroutine.
func (c *Controller) Canvas() *canvas.Canvas { return c.canvas }

// Layout returns the current toolbar layout.
func (c *Controller) Layout() ui.Layout { return c.layout }

// Settings returns a copy of the tool settings.
func (c *Controller) Settings() Settings { return c.settings }

// Close releases the canvas.
func (c *Controller) Close() error { return c.canvas.Close() }

// Process runs one frame through the pipeline. Only the first hand is used.
func (c *Controller) Process(f Frame) Result {
	if len(f.Hands) == 0 {
		return c.idle(NoHandDetected, gesture.Idle)
	}
	if err := c.ensureMapper(f.Width, f.Height); err != nil {
		return c.idle(NoHandDetected, gesture.Idle)
	}

	hand := &f.Hands[0]
	intent := gesture.Classify(hand)
	raw := c.mapper.Raw(hand.At(detector.IndexTip))

	switch intent {
	case gesture.Draw:
		c.hovered = ui.NoAction
		if c.cfg.DepthGate && !c.gate.Touching(hand) {
			c.lift()
			c.cursor = Cursor{Point: c.mapper.Map(mapping.Point(raw)), Visible: true}
			return Result{Intent: intent, Status: MoveCloserToDraw, Cursor: c.cursor}
		}
		return c.draw(raw)

	case gesture.Select:
		c.lift()
		p := c.mapper.Map(mapping.Point(raw))
		c.cursor = Cursor{Point: p, Visible: true}
		res := Result{Intent: intent, Status: SelectionMode, Cursor: c.cursor, Action: ui.NoAction}

		hit := c.layout.HitTest(p)
		if hit != c.hovered && hit.Kind != ui.None {
			res.Painted = c.applyAction(hit)
			res.Action = hit
		}
		c.hovered = hit
		return res

	default:
		res := c.idle(ReadyToDraw, intent)
		c.cursor = Cursor{Point: c.mapper.Map(mapping.Point(raw)), Visible: true}
		res.Cursor = c.cursor
		return res
	}
}

func (c *Controller) draw(raw image.Point) Result {
	s := c.chain.Process(mapping.Point(raw))
	res := Result{Intent: gesture.Draw, Status: Drawing, Verdict: s.Verdict}

	if !s.Valid {
		res.Cursor = c.cursor
		return res
	}
	if s.Restart {
		c.canvas.Lift()
	}

	p := c.mapper.Map(s.Point)
	c.cursor = Cursor{Point: p, InkActive: true, Visible: true}

	if c.cfg.ToolbarGuard && c.layout.InToolbar(p) {
		c.canvas.Lift()
		c.cursor.InkActive = false
		res.Cursor = c.cursor
		return res
	}

	res.Painted = c.canvas.Stroke(p, c.settings.Brush())
	res.Cursor = c.cursor
	return res
}

func (c *Controller) idle(status Status, intent gesture.Intent) Result {
	c.lift()
	c.hovered = ui.NoAction
	c.cursor = Cursor{}
	return Result{Intent: intent, Status: status}
}

// lift resets filter memory and pen state so the next point starts a new stroke.
func (c *Controller) lift() {
	c.chain.Reset()
	c.canvas.Lift()
}

func (c *Controller) ensureMapper(w, h int) error {
	src := image.Pt(w, h)
	if c.mapped && c.mapper.Source() == src {
		return nil
	}
	m, err := mapping.New(src, c.canvas.Size())
	if err != nil {
		return err
	}
	if c.mapped {
		c.lift()
	}
	c.mapper = m
	c.mapped = true
	return nil
}

// applyAction performs a toolbar action and reports whether the canvas changed.
func (c *Controller) applyAction(a ui.Action) bool {
	switch a.Kind {
	case ui.SelectColor:
		// Hit test only yields valid palette indices.
		_ = c.settings.SelectColor(a.Color)
	case ui.ToggleEraser:
		c.settings.ToggleEraser()
	case ui.Clear:
		c.clear()
		return true
	}
	return false
}

func (c *Controller) clear() {
	c.canvas.Clear()
	c.chain.Reset()
}

// Apply executes a command from the control surface. Save and Quit return
// ErrNotHandled.
func (c *Controller) Apply(cmd Command) error {
	switch cmd.Kind {
	case SelectColor:
		return c.settings.SelectColor(cmd.Color)
	case ToggleEraser:
		c.settings.ToggleEraser()
	case Clear:
		c.clear()
	case Thicker:
		c.settings.AdjustThickness(1)
	case Thinner:
		c.settings.AdjustThickness(-1)
	case TogglePreview:
		c.settings.TogglePreview()
	case Save, Quit:
		return fmt.Errorf("%w: %s", ErrNotHandled, cmd)
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidCommand, cmd.Kind)
	}
	return nil
}

// Resize resizes the canvas, rebuilds the layout and lifts the pen. On error
// nothing changes.
func (c *Controller) Resize(w, h int) error {
	layout, err := ui.NewLayout(w)
	if err != nil {
		return err
	}
	if err := c.canvas.Resize(w, h); err != nil {
		return err
	}
	c.layout = layout
	c.mapped = false
	c.hovered = ui.NoAction
	c.chain.Reset()
	return nil
}
