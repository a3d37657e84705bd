// Package keys turns swipe directions into key presses.
package keys

import (
	"context"
	"fmt"

	"github.com/ayusman/swipekeys/internal/gesture"
)

// KeySet maps each direction to a key name.
type KeySet string

const (
	Arrows KeySet = "arrows"
	WASD   KeySet = "wasd"
)

var keyMaps = map[KeySet]map[gesture.Direction]string{
	Arrows: {
		gesture.Left:  "left",
		gesture.Right: "right",
		gesture.Up:    "up",
		gesture.Down:  "down",
	},
	WASD: {
		gesture.Left:  "a",
		gesture.Right: "d",
		gesture.Up:    "w",
		gesture.Down:  "s",
	},
}

// ParseKeySet validates a key set name.
func ParseKeySet(s string) (KeySet, error) {
	ks := KeySet(s)
	if _, ok := keyMaps[ks]; !ok {
		return "", fmt.Errorf("unknown key set %q (want arrows or wasd)", s)
	}
	return ks, nil
}

// Key returns the key bound to d, or "" for None or an unknown set.
func (ks KeySet) Key(d gesture.Direction) string {
	return keyMaps[ks][d]
}

// Injector delivers a single key tap to the operating system.
type Injector interface {
	Press(ctx context.Context, key string) error
}

// InjectorFunc adapts a function to Injector.
type InjectorFunc func(ctx context.Context, key string) error

func (f InjectorFunc) Press(ctx context.Context, key string) error {
	return f(ctx, key)
}
