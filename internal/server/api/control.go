package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/fingerpaint/internal/app"
	"github.com/ayusman/fingerpaint/internal/controller"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// Submitter queues commands for the pipeline.
type Submitter interface {
	Submit(cmd controller.Command, source string) error
}

// ControlHandler accepts control commands over HTTP.
type ControlHandler struct {
	commands Submitter
}

// NewControlHandler creates a ControlHandler that forwards to s.
func NewControlHandler(s Submitter) *ControlHandler {
	return &ControlHandler{commands: s}
}

type controlRequest struct {
	Command string `json:"command"`
}

type controlResponse struct {
	Command string `json:"command"`
	Queued  bool   `json:"queued"`
}

type swatchResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Hex   string `json:"hex"`
}

type describeResponse struct {
	Commands []string         `json:"commands"`
	Palette  []swatchResponse `json:"palette"`
}

// ServeHTTP handles GET (describe the control surface) and POST (queue a command).
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.describe(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// describe handles GET /api/control.
func (h *ControlHandler) describe(w http.ResponseWriter, r *http.Request) {
	resp := describeResponse{
		Commands: []string{"color:N", "eraser", "clear", "thicker", "thinner", "preview", "save", "quit"},
	}
	for i, sw := range ui.Palette {
		resp.Palette = append(resp.Palette, swatchResponse{
			Index: i,
			Name:  sw.Name,
			Hex:   fmt.Sprintf("#%02x%02x%02x", sw.Color.R, sw.Color.G, sw.Color.B),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// submit handles POST /api/control.
func (h *ControlHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cmd, err := controller.ParseCommand(req.Command)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cmd.Kind == controller.SelectColor && (cmd.Color < 0 || cmd.Color >= len(ui.Palette)) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("color index %d out of range", cmd.Color))
		return
	}

	if err := h.commands.Submit(cmd, app.SourceHTTP); err != nil {
		if errors.Is(err, app.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, controlResponse{Command: cmd.String(), Queued: true})
}
