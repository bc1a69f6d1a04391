package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerpaint/internal/app"
	"github.com/ayusman/fingerpaint/internal/capture"
	"github.com/ayusman/fingerpaint/internal/config"
	"github.com/ayusman/fingerpaint/internal/controller"
	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/logger"
	"github.com/ayusman/fingerpaint/internal/metrics"
	"github.com/ayusman/fingerpaint/internal/server"
	"github.com/ayusman/fingerpaint/internal/tray"
)

const windowName = "Fingertip Paint"

// HighGUI windows and the tray both need the process main thread on macOS.
func init() {
	runtime.LockOSThread()
}

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "fingerpaint failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.NewManager()

	// Try MediaPipe first, fall back to mock detector
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(cfg.Detector()); err == nil {
		det = mp
		log.Info(ctx, "using MediaPipe hand detection")
	} else {
		log.Warn(ctx, "MediaPipe not available, using mock detector; nothing will be drawn", logger.Error(err))
		det = detector.NewMockDetector()
	}

	cam := capture.NewCamera(cfg.Camera())

	opts := app.Options{
		Config:   cfg,
		Camera:   cam,
		Detector: det,
		Logger:   log,
		Metrics:  m,
	}

	var window *gocv.Window
	var a *app.App
	if cfg.Mode == config.ModeWindow {
		window = gocv.NewWindow(windowName)
		defer window.Close()
		opts.OnFrame = func(display *gocv.Mat) {
			window.IMShow(*display)
			key := window.WaitKey(1)
			if !window.IsOpen() {
				submit(ctx, log, a, controller.Command{Kind: controller.Quit}, app.SourceKey)
				return
			}
			if key < 0 {
				return
			}
			if cmd, ok := controller.ParseKey(rune(key & 0xff)); ok {
				submit(ctx, log, a, cmd, app.SourceKey)
			}
		}
	}

	a, err := app.New(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Addr != "" {
		srv := server.New(server.Config{
			StaticDir:      findWebDir(),
			Publisher:      a.Publisher(),
			Commands:       a,
			Metrics:        m,
			Logger:         log,
			StreamInterval: cfg.FrameInterval(),
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
				log.Error(ctx, "HTTP server failed", logger.Error(err))
			}
		}()
	}

	log.Info(ctx, "fingerpaint starting",
		logger.String("mode", cfg.Mode),
		logger.String("addr", cfg.Addr),
		logger.String("save_dir", cfg.SaveDir))

	if cfg.Mode == config.ModeWindow {
		return a.Run(ctx)
	}
	return runHeadless(ctx, cfg, log, a)
}

// runHeadless drives the pipeline from a goroutine and keeps the main thread
// for the tray.
func runHeadless(ctx context.Context, cfg *config.Config, log logger.Logger, a *app.App) error {
	t := tray.New()
	t.OnCommand(func(cmd controller.Command) {
		submit(ctx, log, a, cmd, app.SourceTray)
	})
	t.OnOpen(func() {
		openBrowser(ctx, log, browserURL(cfg.Addr))
	})

	statuses, unsubscribe := a.Publisher().Subscribe(1)
	defer unsubscribe()
	go func() {
		last := ""
		for st := range statuses {
			if st.Status != last {
				last = st.Status
				t.SetStatus(st.Status)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		t.Quit()
	}()

	t.Run()
	return <-errCh
}

func submit(ctx context.Context, log logger.Logger, a *app.App, cmd controller.Command, source string) {
	if a == nil {
		return
	}
	if err := a.Submit(cmd, source); err != nil {
		log.Warn(ctx, "command dropped", logger.String("command", cmd.String()), logger.Error(err))
	}
}

// browserURL turns a listen address into a local URL.
func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(ctx context.Context, log logger.Logger, url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn(ctx, "open browser", logger.String("url", url), logger.Error(err))
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.fingerpaint/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".fingerpaint", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
