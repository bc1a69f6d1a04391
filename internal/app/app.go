// Package app runs the capture, detect, paint and publish loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerpaint/internal/capture"
	"github.com/ayusman/fingerpaint/internal/config"
	"github.com/ayusman/fingerpaint/internal/controller"
	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/gesture"
	"github.com/ayusman/fingerpaint/internal/logger"
	"github.com/ayusman/fingerpaint/internal/metrics"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// SavePrefix starts every saved file name.
const SavePrefix = "fingertip_painting_"

// Command sources reported in metrics and logs.
const (
	SourceKey  = "key"
	SourceTray = "tray"
	SourceHTTP = "http"
)

var (
	// ErrQuit is returned by Step when a quit command was received.
	ErrQuit = errors.New("quit requested")
	// ErrQueueFull is returned by Submit when the command queue is full.
	ErrQueueFull = errors.New("command queue full")
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing dependency")
)

// Options holds the collaborators of an App. Config, Camera and Detector are
// required; the rest default to no-op or fresh instances.
type Options struct {
	Config    *config.Config
	Camera    capture.Camera
	Detector  detector.Detector
	Logger    logger.Logger
	Metrics   *metrics.Manager
	Publisher *Publisher

	// OnFrame, if set, receives every composed display from the pipeline
	// goroutine. The Mat is closed when OnFrame returns.
	OnFrame func(display *gocv.Mat)
}

type queued struct {
	cmd    controller.Command
	source string
}

// App owns the controller and everything it draws on. Step and Run must be
// called from a single goroutine; Submit and Publisher are safe from any.
type App struct {
	cfg      *config.Config
	camera   capture.Camera
	detector detector.Detector
	log      logger.Logger
	metrics  *metrics.Manager
	pub      *Publisher
	onFrame  func(*gocv.Mat)

	ctrl     *controller.Controller
	motion   *capture.MotionDetector
	tracking bool
	skipped  int
	commands chan queued
	session  string
	seq      uint64
	dirty    bool
}

// New creates an App with a fresh canvas sized from the configuration.
func New(opts Options) (*App, error) {
	if opts.Config == nil || opts.Camera == nil || opts.Detector == nil {
		return nil, fmt.Errorf("%w: config, camera and detector are required", ErrMissingDependency)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	w, h := opts.Config.CanvasSize()
	ctrl, err := controller.New(opts.Config.Controller(), image.Pt(w, h))
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	a := &App{
		cfg:      opts.Config,
		camera:   opts.Camera,
		detector: opts.Detector,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		pub:      opts.Publisher,
		onFrame:  opts.OnFrame,
		ctrl:     ctrl,
		commands: make(chan queued, opts.Config.CommandQueue),
		session:  uuid.NewString(),
		dirty:    true,
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	if a.metrics == nil {
		a.metrics = metrics.NewManager(metrics.WithMetricsEnabled(false))
	}
	if a.pub == nil {
		a.pub = NewPublisher()
	}
	if opts.Config.MotionGate {
		a.motion = capture.NewMotionDetector(opts.Config.MotionThreshold)
	}
	a.log = a.log.Named("app").With(logger.String("session", a.session))

	return a, nil
}

// Publisher returns the snapshot publisher.
func (a *App) Publisher() *Publisher { return a.pub }

// Session returns the random id of this run.
func (a *App) Session() string { return a.session }

// Settings returns the current tool settings. Pipeline goroutine only.
func (a *App) Settings() controller.Settings { return a.ctrl.Settings() }

// Controller exposes the frame controller. Pipeline goroutine only.
func (a *App) Controller() *controller.Controller { return a.ctrl }

// Submit queues cmd for the next frame. It never blocks.
func (a *App) Submit(cmd controller.Command, source string) error {
	select {
	case a.commands <- queued{cmd: cmd, source: source}:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s from %s", ErrQueueFull, cmd, source)
	}
}

// Run opens the camera and steps once per frame interval until ctx is done, a
// quit command arrives or the camera fails. Quit and cancellation return nil.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.log.Warn(ctx, "close camera", logger.Error(err))
		}
	}()
	a.camera.SetFPS(a.cfg.FPS)

	ticker := time.NewTicker(a.cfg.FrameInterval())
	defer ticker.Stop()

	a.log.Info(ctx, "pipeline started",
		logger.Int("fps", a.cfg.FPS),
		logger.Int("canvas_width", a.ctrl.Canvas().Width()),
		logger.Int("canvas_height", a.ctrl.Canvas().Height()))

	for {
		select {
		case <-ctx.Done():
			a.log.Info(ctx, "pipeline stopped", logger.String("reason", ctx.Err().Error()))
			return nil
		case <-ticker.C:
		}

		if err := a.Step(ctx); err != nil {
			if errors.Is(err, ErrQuit) {
				a.log.Info(ctx, "pipeline stopped", logger.String("reason", "quit"))
				return nil
			}
			return err
		}
	}
}

// Step processes queued commands and one camera frame.
func (a *App) Step(ctx context.Context) error {
	start := time.Now()

	if err := a.drain(ctx); err != nil {
		return err
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	if a.cfg.Mirror {
		capture.Mirror(frame)
	}
	size := capture.Size(frame)

	var hands []detector.HandLandmarks
	if a.shouldDetect(frame) {
		hands, err = a.detector.Detect(frame)
		if err != nil {
			a.metrics.RecordDetectorError()
			a.log.Warn(ctx, "hand detection failed, skipping frame", logger.Error(err))
			return nil
		}
	} else {
		a.metrics.RecordDetectSkipped()
	}
	a.tracking = len(hands) > 0

	res := a.ctrl.Process(controller.Frame{Hands: hands, Width: size.X, Height: size.Y})
	a.observe(ctx, res)

	display := a.compose(frame, hands, res)
	defer display.Close()
	if a.onFrame != nil {
		a.onFrame(&display)
	}
	a.publish(ctx, &display, res)

	a.metrics.RecordFrame(res.Intent.String(), res.Status.String(), time.Since(start))
	return nil
}

// shouldDetect reports whether frame is worth running the detector on. With the
// motion gate on, a still scene with no tracked hand is skipped, except for the
// first frame and one probe per second of frames so a motionless hand is found.
func (a *App) shouldDetect(frame *gocv.Mat) bool {
	if a.motion == nil {
		return true
	}
	moved, _ := a.motion.Detect(frame)
	if a.seq == 0 || a.tracking || moved || a.skipped >= a.cfg.FPS {
		a.skipped = 0
		return true
	}
	a.skipped++
	return false
}

// Save writes the canvas to a new uniquely named file in the save directory
// and returns its path. Pipeline goroutine only.
func (a *App) Save(ctx context.Context) (string, error) {
	path, err := a.save()
	a.metrics.RecordSave(err)
	if err != nil {
		a.log.Error(ctx, "save failed", logger.Error(err))
		return "", err
	}
	a.log.Info(ctx, "drawing saved", logger.String("path", path))
	return path, nil
}

func (a *App) save() (string, error) {
	if err := os.MkdirAll(a.cfg.SaveDir, 0o755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}
	path := filepath.Join(a.cfg.SaveDir, SavePrefix+uuid.NewString()+a.cfg.SaveExt())
	if err := a.ctrl.Canvas().Save(path); err != nil {
		return "", fmt.Errorf("save canvas: %w", err)
	}
	return path, nil
}

// Resize changes the canvas size. Pipeline goroutine only.
func (a *App) Resize(w, h int) error {
	if err := a.ctrl.Resize(w, h); err != nil {
		return err
	}
	a.dirty = true
	return nil
}

// Close releases the canvas and the detector. The camera is closed by Run.
func (a *App) Close() error {
	if a.motion != nil {
		a.motion.Close()
	}
	return errors.Join(a.ctrl.Close(), a.detector.Close())
}

func (a *App) drain(ctx context.Context) error {
	for {
		select {
		case q := <-a.commands:
			if err := a.apply(ctx, q); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (a *App) apply(ctx context.Context, q queued) error {
	a.metrics.RecordCommand(q.cmd.Kind.String(), q.source)
	a.log.Debug(ctx, "command", logger.String("command", q.cmd.String()), logger.String("source", q.source))

	switch q.cmd.Kind {
	case controller.Quit:
		return ErrQuit
	case controller.Save:
		// A failed save is logged and counted; painting goes on.
		_, _ = a.Save(ctx)
		return nil
	}

	if err := a.ctrl.Apply(q.cmd); err != nil {
		a.log.Warn(ctx, "command rejected", logger.String("command", q.cmd.String()), logger.Error(err))
		return nil
	}
	if q.cmd.Kind == controller.Clear {
		a.dirty = true
	}
	return nil
}

func (a *App) observe(ctx context.Context, res controller.Result) {
	if res.Intent == gesture.Draw && res.Status == controller.Drawing {
		a.metrics.RecordVerdict(res.Verdict.String())
	}
	if res.Painted {
		a.dirty = true
		if res.Action.Kind == ui.None {
			a.metrics.RecordSegment()
		}
	}
	if res.Action.Kind != ui.None {
		a.metrics.RecordAction(res.Action.Kind.String())
		a.log.Debug(ctx, "toolbar action", logger.String("action", res.Action.String()))
	}
}

func (a *App) publish(ctx context.Context, display *gocv.Mat, res controller.Result) {
	a.seq++
	s := a.ctrl.Settings()
	cv := a.ctrl.Canvas()

	status := Status{
		Seq:       a.seq,
		Session:   a.session,
		Time:      time.Now(),
		Intent:    res.Intent.String(),
		Status:    res.Status.String(),
		CursorX:   res.Cursor.Point.X,
		CursorY:   res.Cursor.Point.Y,
		Visible:   res.Cursor.Visible,
		InkActive: res.Cursor.InkActive,
		Color:     s.Color(),
		ColorName: ui.Palette[s.Color()].Name,
		Eraser:    s.Eraser(),
		Thickness: s.Thickness(),
		Preview:   s.Preview(),
		Width:     cv.Width(),
		Height:    cv.Height(),
	}
	if res.Action.Kind != ui.None {
		status.Action = res.Action.String()
	}

	var canvasPNG []byte
	if a.dirty {
		b, err := encode(gocv.PNGFileExt, cv.Mat())
		if err != nil {
			a.log.Warn(ctx, "encode canvas", logger.Error(err))
		} else {
			canvasPNG = b
			a.dirty = false
		}
	}

	displayJPEG, err := encode(gocv.JPEGFileExt, display)
	if err != nil {
		a.log.Warn(ctx, "encode display", logger.Error(err))
	}

	a.pub.Publish(status, canvasPNG, displayJPEG)
}

// encode returns an owned copy of mat encoded in the format named by ext.
func encode(ext gocv.FileExt, mat *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(ext, *mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
