// Package hud renders the recognizer's state onto camera frames and fans the
// result out to the preview window, the MJPEG stream and websocket clients.
package hud

import (
	"time"

	"github.com/ayusman/swipekeys/internal/gesture"
)

// BannerDuration is how long "ACTION: X" stays on screen after a swipe.
const BannerDuration = 800 * time.Millisecond

// Frame is the overlay state for one processed camera frame.
type Frame struct {
	At            time.Time         `json:"at"`
	Tip           *gesture.Point    `json:"tip"`
	NeutralRadius float64           `json:"neutral_radius"`
	Armed         bool              `json:"armed"`
	Dwelling      bool              `json:"dwelling"`
	Fired         gesture.Direction `json:"fired,omitempty"`
	Last          gesture.Direction `json:"last,omitempty"`
	LastAt        time.Time         `json:"last_at,omitzero"`
	Live          bool              `json:"live"`
	Enabled       bool              `json:"enabled"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
}

// Banner returns the action text to show, or "" once the last swipe is older
// than BannerDuration.
func (f Frame) Banner() string {
	if f.Last == gesture.None || f.At.Sub(f.LastAt) >= BannerDuration {
		return ""
	}
	return "ACTION: " + f.Last.Label()
}

// ModeLabel is "LIVE" when keys are injected and "TEST" otherwise.
func (f Frame) ModeLabel() string {
	if f.Live {
		return "LIVE"
	}
	return "TEST"
}
