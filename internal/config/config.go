// Package config defines fingerpaint configuration and how it is loaded.
package config

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/fingerpaint/internal/canvas"
	"github.com/ayusman/fingerpaint/internal/capture"
	"github.com/ayusman/fingerpaint/internal/controller"
	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/filter"
	"github.com/ayusman/fingerpaint/internal/gesture"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Run modes.
const (
	ModeWindow   = "window"
	ModeHeadless = "headless"
)

// Config contains process configuration. Keys are flat so that every field can
// be set from a FINGERPAINT_<KEY> environment variable.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Mode is "window" (OpenCV window and keyboard) or "headless" (tray and HTTP only).
	Mode string `koanf:"mode"`

	// Addr configures the HTTP listen address; empty disables the server.
	Addr string `koanf:"addr"`

	// Camera capture.
	CameraDevice int  `koanf:"camera_device"`
	CameraWidth  int  `koanf:"camera_width"`
	CameraHeight int  `koanf:"camera_height"`
	FPS          int  `koanf:"fps"`
	Mirror       bool `koanf:"mirror"`

	// Canvas size; zero means "same as the camera".
	CanvasWidth  int    `koanf:"canvas_width"`
	CanvasHeight int    `koanf:"canvas_height"`
	Background   string `koanf:"background"`

	// Saves.
	SaveDir    string `koanf:"save_dir"`
	SaveFormat string `koanf:"save_format"`

	// Detector subprocess.
	DetectorScript  string  `koanf:"detector_script"`
	MinConfidence   float64 `koanf:"min_confidence"`
	MinTrackingConf float64 `koanf:"min_tracking_confidence"`

	// Position filter.
	FilterMode       string  `koanf:"filter_mode"`
	FilterMinCutoff  float64 `koanf:"filter_min_cutoff"`
	FilterBeta       float64 `koanf:"filter_beta"`
	FilterDCutoff    float64 `koanf:"filter_derivative_cutoff"`
	FilterAlpha      float64 `koanf:"filter_alpha"`
	FilterMaxJump    float64 `koanf:"filter_max_jump"`
	FilterDeadZone   float64 `koanf:"filter_dead_zone"`
	FilterMaxRejects int     `koanf:"filter_max_rejects"`
	FilterWindow     int     `koanf:"filter_window"`

	// Drawing behavior.
	DepthGate      bool    `koanf:"depth_gate"`
	DepthThreshold float64 `koanf:"depth_threshold"`
	ToolbarGuard   bool    `koanf:"toolbar_guard"`
	Thickness      int     `koanf:"thickness"`
	Color          int     `koanf:"color"`
	Preview        bool    `koanf:"preview"`

	// MotionGate skips hand detection while no hand is tracked and the scene
	// is still. MotionThreshold is the changed-pixel percentage that wakes it.
	MotionGate      bool    `koanf:"motion_gate"`
	MotionThreshold float64 `koanf:"motion_threshold"`

	// CommandQueue bounds the number of pending control commands.
	CommandQueue int `koanf:"command_queue"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	fc := filter.DefaultConfig()
	return &Config{
		LogLevel:         "info",
		Mode:             ModeWindow,
		Addr:             ":8765",
		CameraDevice:     0,
		CameraWidth:      640,
		CameraHeight:     480,
		FPS:              30,
		Mirror:           true,
		Background:       "#ffffff",
		SaveDir:          ".",
		SaveFormat:       "png",
		MinConfidence:    detector.DefaultConfig().MinConfidence,
		MinTrackingConf:  detector.DefaultConfig().MinTrackingConf,
		FilterMode:       string(fc.Mode),
		FilterMinCutoff:  fc.MinCutoff,
		FilterBeta:       fc.Beta,
		FilterDCutoff:    fc.DerivativeCutoff,
		FilterAlpha:      fc.Alpha,
		FilterMaxJump:    fc.MaxJump,
		FilterDeadZone:   fc.DeadZone,
		FilterMaxRejects: fc.MaxRejects,
		FilterWindow:     fc.Window,
		DepthThreshold:   gesture.DefaultDepthThreshold,
		ToolbarGuard:     true,
		Thickness:        controller.DefaultThickness,
		Color:            0,
		Preview:          true,
		MotionGate:       true,
		MotionThreshold:  capture.DefaultMotionThreshold,
		CommandQueue:     64,
	}
}

// Validate checks cross-field constraints and wraps failures in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Mode != ModeWindow && c.Mode != ModeHeadless {
		return fmt.Errorf("%w: mode %q must be %q or %q", ErrInvalidConfig, c.Mode, ModeWindow, ModeHeadless)
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalidConfig, c.CameraWidth, c.CameraHeight)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalidConfig)
	}
	w, h := c.CanvasSize()
	if w < ui.MinWidth || h <= 0 {
		return fmt.Errorf("%w: canvas size %dx%d (minimum width %d)", ErrInvalidConfig, w, h, ui.MinWidth)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	if !canvas.Supported("." + strings.TrimPrefix(c.SaveFormat, ".")) {
		return fmt.Errorf("%w: save format %q", ErrInvalidConfig, c.SaveFormat)
	}
	if c.Thickness < controller.MinThickness || c.Thickness > controller.MaxThickness {
		return fmt.Errorf("%w: thickness %d outside [%d, %d]", ErrInvalidConfig, c.Thickness, controller.MinThickness, controller.MaxThickness)
	}
	if c.Color < 0 || c.Color >= len(ui.Palette) {
		return fmt.Errorf("%w: color index %d", ErrInvalidConfig, c.Color)
	}
	if c.MotionThreshold < 0 || c.MotionThreshold > 100 {
		return fmt.Errorf("%w: motion_threshold %v outside [0, 100]", ErrInvalidConfig, c.MotionThreshold)
	}
	if c.CommandQueue <= 0 {
		return fmt.Errorf("%w: command_queue must be positive", ErrInvalidConfig)
	}
	if err := c.Filter().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CanvasSize returns the canvas dimensions, defaulting to the camera size.
func (c *Config) CanvasSize() (int, int) {
	w, h := c.CanvasWidth, c.CanvasHeight
	if w == 0 {
		w = c.CameraWidth
	}
	if h == 0 {
		h = c.CameraHeight
	}
	return w, h
}

// FrameInterval returns the pacing interval of the frame loop.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// SaveExt returns the save file extension with a leading dot.
func (c *Config) SaveExt() string {
	return "." + strings.ToLower(strings.TrimPrefix(c.SaveFormat, "."))
}

// Filter returns the position filter configuration.
func (c *Config) Filter() filter.Config {
	return filter.Config{
		Mode:             filter.Mode(c.FilterMode),
		Rate:             float64(c.FPS),
		MinCutoff:        c.FilterMinCutoff,
		Beta:             c.FilterBeta,
		DerivativeCutoff: c.FilterDCutoff,
		Alpha:            c.FilterAlpha,
		MaxJump:          c.FilterMaxJump,
		DeadZone:         c.FilterDeadZone,
		MaxRejects:       c.FilterMaxRejects,
		Window:           c.FilterWindow,
	}
}

// Camera returns the capture device options.
func (c *Config) Camera() capture.Options {
	return capture.Options{
		DeviceID: c.CameraDevice,
		Width:    c.CameraWidth,
		Height:   c.CameraHeight,
		FPS:      c.FPS,
	}
}

// Detector returns the MediaPipe detector configuration.
func (c *Config) Detector() detector.Config {
	return detector.Config{
		MaxHands:        1,
		MinConfidence:   c.MinConfidence,
		MinTrackingConf: c.MinTrackingConf,
		ScriptPath:      c.DetectorScript,
	}
}

// Controller returns the frame controller configuration. Validate must have
// succeeded.
func (c *Config) Controller() controller.Config {
	bg, _ := ParseColor(c.Background)

	settings := controller.DefaultSettings()
	_ = settings.SelectColor(c.Color)
	settings.SetThickness(c.Thickness)
	settings.SetPreview(c.Preview)

	return controller.Config{
		Filter:         c.Filter(),
		DepthGate:      c.DepthGate,
		DepthThreshold: c.DepthThreshold,
		ToolbarGuard:   c.ToolbarGuard,
		Background:     bg,
		Settings:       settings,
	}
}

// ParseColor parses "#rrggbb" (the hash is optional) into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidConfig, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidConfig, s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
