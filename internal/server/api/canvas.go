package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/fingerpaint/internal/app"
)

// Viewer returns the latest published snapshot.
type Viewer interface {
	View() app.Snapshot
}

// CanvasHandler serves the current drawing as PNG.
type CanvasHandler struct {
	view Viewer
}

// NewCanvasHandler creates a CanvasHandler reading from v.
func NewCanvasHandler(v Viewer) *CanvasHandler {
	return &CanvasHandler{view: v}
}

// ServeHTTP handles GET /api/canvas.png. Add ?download=1 to get an attachment.
func (h *CanvasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.view.View()
	if len(snap.Canvas) == 0 {
		writeError(w, http.StatusServiceUnavailable, "no frame published yet")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.Canvas)))
	w.Header().Set("Cache-Control", "no-cache")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+app.SavePrefix+snap.Status.Session+`.png"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Canvas)
}
