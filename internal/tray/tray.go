// Package tray provides a system tray control menu for headless painting.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/fingerpaint/internal/controller"
	"github.com/ayusman/fingerpaint/internal/ui"
)

// Entry is one command menu item.
type Entry struct {
	Title   string
	Tooltip string
	Command controller.Command
}

// ColorEntries returns one entry per palette swatch.
func ColorEntries() []Entry {
	entries := make([]Entry, len(ui.Palette))
	for i, sw := range ui.Palette {
		entries[i] = Entry{
			Title:   sw.Name,
			Tooltip: "Paint in " + sw.Name,
			Command: controller.Command{Kind: controller.SelectColor, Color: i},
		}
	}
	return entries
}

// ToolEntries are the top-level tool commands, in menu order.
var ToolEntries = []Entry{
	{"Eraser", "Toggle the eraser", controller.Command{Kind: controller.ToggleEraser}},
	{"Thicker brush", "Increase brush thickness", controller.Command{Kind: controller.Thicker}},
	{"Thinner brush", "Decrease brush thickness", controller.Command{Kind: controller.Thinner}},
	{"Camera preview", "Show or hide the camera inset", controller.Command{Kind: controller.TogglePreview}},
	{"Clear canvas", "Erase the whole drawing", controller.Command{Kind: controller.Clear}},
	{"Save drawing", "Write the canvas to the save directory", controller.Command{Kind: controller.Save}},
}

// Tray represents the system tray application.
type Tray struct {
	onCommand func(controller.Command)
	onOpen    func()
	onQuit    func()
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnCommand sets the callback invoked for every command menu click, quit included.
func (t *Tray) OnCommand(fn func(controller.Command)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnOpen sets the callback function to be called when the open menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called after the quit command was sent.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Fingerpaint")
	systray.SetTooltip("Fingerpaint: paint with your index finger")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem("No hand detected", "Pipeline status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	colors := systray.AddMenuItem("Color", "Choose the brush color")
	for _, e := range ColorEntries() {
		t.bind(colors.AddSubMenuItem(e.Title, e.Tooltip), e.Command)
	}
	for _, e := range ToolEntries {
		t.bind(systray.AddMenuItem(e.Title, e.Tooltip), e.Command)
	}
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in browser...", "Open the live view")
	go func() {
		for range menuOpen.ClickedCh {
			t.handleOpen()
		}
	}()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Fingerpaint")
	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

// bind forwards clicks on item as cmd.
func (t *Tray) bind(item *systray.MenuItem, cmd controller.Command) {
	go func() {
		for range item.ClickedCh {
			t.handleCommand(cmd)
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleCommand calls the command callback outside the lock.
func (t *Tray) handleCommand(cmd controller.Command) {
	t.mu.RLock()
	callback := t.onCommand
	t.mu.RUnlock()

	if callback != nil {
		callback(cmd)
	}
}

// handleOpen handles the open menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit sends a quit command, runs the quit callback and stops the tray.
func (t *Tray) handleQuit() {
	t.handleCommand(controller.Command{Kind: controller.Quit})

	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the status line in the menu.
func (t *Tray) SetStatus(status string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		if status == "" {
			t.menuStatus.SetTitle("No hand detected")
		} else {
			t.menuStatus.SetTitle(status)
		}
	}
}
