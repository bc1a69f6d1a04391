package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/fingerpaint/internal/app"
)

type fakeViewer struct {
	snap app.Snapshot
}

func (f fakeViewer) View() app.Snapshot { return f.snap }

func TestCanvasHandler(t *testing.T) {
	t.Run("serves the published png", func(t *testing.T) {
		v := fakeViewer{snap: app.Snapshot{Canvas: []byte("\x89PNG data")}}
		req := httptest.NewRequest(http.MethodGet, "/api/canvas.png", nil)
		rec := httptest.NewRecorder()

		NewCanvasHandler(v).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if got := rec.Header().Get("Content-Type"); got != "image/png" {
			t.Errorf("Content-Type = %q", got)
		}
		if rec.Body.String() != "\x89PNG data" {
			t.Errorf("body = %q", rec.Body.String())
		}
		if rec.Header().Get("Content-Disposition") != "" {
			t.Error("inline response should not be an attachment")
		}
	})

	t.Run("download sets attachment name", func(t *testing.T) {
		v := fakeViewer{snap: app.Snapshot{Canvas: []byte("png"), Status: app.Status{Session: "abc"}}}
		req := httptest.NewRequest(http.MethodGet, "/api/canvas.png?download=1", nil)
		rec := httptest.NewRecorder()

		NewCanvasHandler(v).ServeHTTP(rec, req)

		got := rec.Header().Get("Content-Disposition")
		if !strings.Contains(got, app.SavePrefix+"abc.png") {
			t.Errorf("Content-Disposition = %q", got)
		}
	})

	t.Run("unavailable before the first frame", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/canvas.png", nil)
		rec := httptest.NewRecorder()

		NewCanvasHandler(fakeViewer{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("only allows GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/canvas.png", nil)
		rec := httptest.NewRecorder()

		NewCanvasHandler(fakeViewer{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}
