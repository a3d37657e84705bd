package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/swipekeys/internal/gesture"
)

type fakeController struct {
	enabled bool
	live    bool
}

func (f *fakeController) IsEnabled() bool         { return f.enabled }
func (f *fakeController) SetEnabled(enabled bool) { f.enabled = enabled }
func (f *fakeController) Live() bool              { return f.live }
func (f *fakeController) SetLive(live bool)       { f.live = live }

func TestTray_Toggles(t *testing.T) {
	ctrl := &fakeController{enabled: true}
	tr := New(ctrl)

	tr.handleToggle()
	assert.False(t, ctrl.enabled)
	tr.handleToggle()
	assert.True(t, ctrl.enabled)

	tr.handleMode()
	assert.True(t, ctrl.live)
	tr.handleMode()
	assert.False(t, ctrl.live)
}

func TestTray_Callbacks(t *testing.T) {
	tr := New(&fakeController{})

	// No callback registered.
	tr.handleOpen()

	opened := 0
	tr.OnOpenDashboard(func() { opened++ })
	tr.handleOpen()
	assert.Equal(t, 1, opened)
}

func TestTray_LastSwipe(t *testing.T) {
	tr := New(&fakeController{})
	assert.Equal(t, gesture.None, tr.LastSwipe())

	tr.SetLastSwipe(gesture.Up)
	assert.Equal(t, gesture.Up, tr.LastSwipe())
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "● Detection On", enabledTitle(true))
	assert.Equal(t, "○ Detection Off", enabledTitle(false))
	assert.Equal(t, "Mode: LIVE (sending keys)", modeTitle(true))
	assert.Equal(t, "Mode: TEST (log only)", modeTitle(false))
	assert.Equal(t, "Last: none", lastTitle(gesture.None))
	assert.Equal(t, "Last: LEFT", lastTitle(gesture.Left))
}
