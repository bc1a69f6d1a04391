package e2e

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerpaint/internal/app"
	"github.com/ayusman/fingerpaint/internal/capture"
	"github.com/ayusman/fingerpaint/internal/config"
	"github.com/ayusman/fingerpaint/internal/detector"
	"github.com/ayusman/fingerpaint/internal/metrics"
	"github.com/ayusman/fingerpaint/internal/server"
	"github.com/ayusman/fingerpaint/internal/ui"
)

const (
	frameW = 640
	frameH = 480
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func at(h detector.HandLandmarks, x, y int) detector.HandLandmarks {
	return h.MovedTo(detector.IndexTip, (float64(x)+0.5)/frameW, (float64(y)+0.5)/frameH)
}

func fetchCanvas(t *testing.T, client *http.Client, url string) image.Image {
	t.Helper()
	resp, err := client.Get(url + "/api/canvas.png")
	if err != nil {
		t.Fatalf("GET /api/canvas.png error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/canvas.png status = %d", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode canvas: %v", err)
	}
	return img
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestE2E_PaintWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	ctx := context.Background()
	cfg := config.New(ctx)
	cfg.Mirror = false
	cfg.FilterMode = "none"
	cfg.FilterMaxJump = 0
	cfg.FilterDeadZone = 0
	cfg.FilterWindow = 0
	cfg.MotionGate = false
	cfg.SaveDir = t.TempDir()

	frame := capture.SolidFrame(frameW, frameH, color.RGBA{R: 30, G: 30, B: 30, A: 255})
	defer frame.Close()
	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	det := detector.NewMockDetector()
	m := metrics.NewManager()

	application, err := app.New(app.Options{Config: cfg, Camera: cam, Detector: det, Metrics: m})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Close()
	if err := cam.Open(); err != nil {
		t.Fatalf("camera Open() error = %v", err)
	}

	srv := server.New(server.Config{Publisher: application.Publisher(), Commands: application, Metrics: m})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	step := func(t *testing.T, hands ...detector.HandLandmarks) {
		t.Helper()
		det.SetHands(hands...)
		if err := application.Step(ctx); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}

	t.Run("DrawStroke", func(t *testing.T) {
		step(t, at(detector.PointingLandmarks(), 100, 200))
		step(t, at(detector.PointingLandmarks(), 300, 200))
		step(t)

		img := fetchCanvas(t, client, ts.URL)
		if got := rgba(img.At(200, 200)); got != ui.Palette[0].Color {
			t.Errorf("stroke pixel = %v, want red", got)
		}
		if got := rgba(img.At(200, 300)); got != white {
			t.Errorf("background pixel = %v, want white", got)
		}
	})

	t.Run("ControlSelectsColor", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/control", "application/json", strings.NewReader(`{"command": "color:2"}`))
		if err != nil {
			t.Fatalf("POST /api/control error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
		}

		step(t, at(detector.PointingLandmarks(), 100, 300))
		step(t, at(detector.PointingLandmarks(), 300, 300))

		img := fetchCanvas(t, client, ts.URL)
		if got := rgba(img.At(200, 300)); got != ui.Palette[2].Color {
			t.Errorf("second stroke = %v, want blue", got)
		}
	})

	t.Run("Save", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/control", "application/json", strings.NewReader(`{"command": "save"}`))
		if err != nil {
			t.Fatalf("POST /api/control error = %v", err)
		}
		resp.Body.Close()
		step(t)

		files, _ := filepath.Glob(filepath.Join(cfg.SaveDir, app.SavePrefix+"*.png"))
		if len(files) != 1 {
			t.Fatalf("saved files = %v, want one", files)
		}
	})

	t.Run("PalmClearsCanvas", func(t *testing.T) {
		step(t, at(detector.OpenPalmLandmarks(), 580, 40))

		img := fetchCanvas(t, client, ts.URL)
		for _, p := range []image.Point{{200, 200}, {200, 300}} {
			if got := rgba(img.At(p.X, p.Y)); got != white {
				t.Errorf("pixel %v = %v after clear, want white", p, got)
			}
		}
	})

	t.Run("HealthReportsFrames", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer resp.Body.Close()

		var health struct {
			Status string `json:"status"`
			Frames uint64 `json:"frames"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if health.Status != "ok" || health.Frames != 7 {
			t.Errorf("health = %+v, want ok with 7 frames", health)
		}
	})

	t.Run("MetricsExposed", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics error = %v", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read metrics: %v", err)
		}
		body := string(raw)
		for _, want := range []string{
			`fingerpaint_pipeline_ui_actions_total{action="clear"} 1`,
			`fingerpaint_pipeline_saves_total{result="ok"} 1`,
			`fingerpaint_pipeline_commands_total{command="save",source="http"} 1`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("metrics missing %s", want)
			}
		}
	})
}
