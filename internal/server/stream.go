package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/fingerpaint/internal/app"
	"github.com/ayusman/fingerpaint/internal/metrics"
)

// DefaultStreamInterval paces the MJPEG stream at about 15 fps.
const DefaultStreamInterval = 66 * time.Millisecond

// StreamHandler serves the composed display as MJPEG.
type StreamHandler struct {
	pub      *app.Publisher
	interval time.Duration
	metrics  *metrics.Manager
}

// NewStreamHandler creates a new StreamHandler reading from pub. A non-positive
// interval selects DefaultStreamInterval.
func NewStreamHandler(pub *app.Publisher, interval time.Duration, m *metrics.Manager) *StreamHandler {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &StreamHandler{pub: pub, interval: interval, metrics: m}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is written only
// when the pipeline has published a new one.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.metrics.AddStreamClients(1)
	defer h.metrics.AddStreamClients(-1)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		snap := h.pub.View()
		if len(snap.Display) > 0 && snap.Status.Seq != last {
			last = snap.Status.Seq
			if err := writePart(w, snap.Display); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
