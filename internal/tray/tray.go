// Package tray provides the system tray menu for swipekeys.
package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/swipekeys/internal/gesture"
)

// refreshInterval picks up changes made from the dashboard.
const refreshInterval = time.Second

// Controller is the detection state the tray shows and toggles.
type Controller interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
	Live() bool
	SetLive(live bool)
}

// Tray represents the system tray application.
type Tray struct {
	ctrl       Controller
	onOpen     func()
	onQuit     func()
	mu         sync.RWMutex
	last       gesture.Direction
	menuToggle *systray.MenuItem
	menuMode   *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray that controls ctrl.
func New(ctrl Controller) *Tray {
	return &Tray{ctrl: ctrl}
}

// OnOpenDashboard sets the callback for the "Open Dashboard" item.
func (t *Tray) OnOpenDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It must be called from the main goroutine and
// blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("swipekeys")
	systray.SetTooltip("swipekeys: fingertip swipes to arrow keys")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(enabledTitle(t.ctrl.IsEnabled()), "Pause or resume swipe detection")
	t.menuMode = systray.AddMenuItem(modeTitle(t.ctrl.Live()), "Switch between sending keys and logging only")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last detected swipe")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit swipekeys")

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuMode.ClickedCh:
				t.handleMode()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-ticker.C:
				t.refresh()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	enabled := !t.ctrl.IsEnabled()
	t.ctrl.SetEnabled(enabled)
	t.refresh()
}

func (t *Tray) handleMode() {
	live := !t.ctrl.Live()
	t.ctrl.SetLive(live)
	t.refresh()
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// refresh updates the menu titles from the controller.
func (t *Tray) refresh() {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(enabledTitle(t.ctrl.IsEnabled()))
	}
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(t.ctrl.Live()))
	}
}

// SetLastSwipe updates the "Last:" item.
func (t *Tray) SetLastSwipe(d gesture.Direction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = d
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(d))
	}
}

// LastSwipe returns the direction shown in the "Last:" item.
func (t *Tray) LastSwipe() gesture.Direction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func enabledTitle(enabled bool) string {
	if enabled {
		return "● Detection On"
	}
	return "○ Detection Off"
}

func modeTitle(live bool) string {
	if live {
		return "Mode: LIVE (sending keys)"
	}
	return "Mode: TEST (log only)"
}

func lastTitle(d gesture.Direction) string {
	if d == gesture.None {
		return "Last: none"
	}
	return "Last: " + d.Label()
}
