package keys

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayusman/swipekeys/internal/gesture"
)

// Mode names stored with each event.
const (
	ModeLive = "live"
	ModeTest = "test"
)

// Press describes one dispatched swipe.
type Press struct {
	Direction gesture.Direction
	Key       string
	Mode      string
}

// Dispatcher prints every swipe as "ACTION: LEFT" and, in LIVE mode, taps the
// bound key through the injector. It is safe for concurrent use.
type Dispatcher struct {
	logger   *slog.Logger
	injector Injector

	mu     sync.RWMutex
	keySet KeySet
	live   bool
}

// NewDispatcher creates a Dispatcher. A nil injector makes LIVE behave like TEST.
func NewDispatcher(keySet KeySet, injector Injector, live bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:   logger.With("component", "keys"),
		injector: injector,
		keySet:   keySet,
		live:     live,
	}
}

// Dispatch handles one swipe. None is ignored. The returned error only
// reports a failed injection; the Press is valid either way.
func (d *Dispatcher) Dispatch(ctx context.Context, dir gesture.Direction) (Press, error) {
	if dir == gesture.None {
		return Press{}, nil
	}

	d.mu.RLock()
	keySet, live := d.keySet, d.live
	d.mu.RUnlock()

	p := Press{Direction: dir, Key: keySet.Key(dir), Mode: ModeTest}
	if live && d.injector != nil {
		p.Mode = ModeLive
	}

	d.logger.Info("ACTION: "+dir.Label(), "key", p.Key, "mode", p.Mode)

	if p.Mode != ModeLive || p.Key == "" {
		return p, nil
	}
	return p, d.injector.Press(ctx, p.Key)
}

// SetLive switches between LIVE (inject) and TEST (log only).
func (d *Dispatcher) SetLive(live bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live = live
}

// Live reports whether key presses are injected.
func (d *Dispatcher) Live() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.live
}

// SetKeySet changes the direction to key binding.
func (d *Dispatcher) SetKeySet(ks KeySet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keySet = ks
}

// KeySet returns the active binding.
func (d *Dispatcher) KeySet() KeySet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.keySet
}
