package gesture

import (
	"math"
	"time"
)

// Center is the middle of the frame, around which the neutral zone is drawn.
var Center = Point{X: 0.5, Y: 0.5}

// Sample is one fingertip observation.
type Sample struct {
	At time.Time
	X  float64
	Y  float64
}

// Swipe is the result of classifying the motion history.
type Swipe struct {
	Direction Direction
	DX        float64
	DY        float64
	At        time.Time
}

// State is a read-only snapshot of a Recognizer, used for display and logging.
type State struct {
	Armed      bool
	Dwelling   bool
	HistoryLen int
	// Last is the most recently emitted swipe; its Direction is None before the first one.
	Last Swipe
}

// Recognizer converts per-frame fingertip positions into swipe events.
//
// A swipe disarms the recognizer so that one continuous motion produces one
// event. It re-arms when the fingertip dwells in the neutral zone for
// NeutralHold, or when AutoRearm has passed since the last swipe.
//
// Timestamps are supplied by the caller and must not go backwards.
// A Recognizer is not safe for concurrent use.
type Recognizer struct {
	cfg     Config
	history []Sample

	armed        bool
	dwelling     bool
	neutralSince time.Time
	fired        bool
	last         Swipe
}

// NewRecognizer creates an armed Recognizer with an empty history.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{
		cfg:   cfg,
		armed: true,
	}
}

// Config returns the tuning the recognizer was built with.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// Observe feeds one frame into the recognizer. tip is nil when no hand was
// detected. It returns the swipe direction fired on this frame, or None.
func (r *Recognizer) Observe(now time.Time, tip *Point) Direction {
	// Auto re-arm runs first so a stale disarmed gate cannot block this frame.
	if !r.armed && r.fired && now.Sub(r.last.At) >= r.cfg.AutoRearm {
		r.armed = true
	}

	r.evict(now)

	if tip == nil {
		return None
	}

	r.history = append(r.history, Sample{At: now, X: tip.X, Y: tip.Y})

	if InNeutralZone(*tip, r.cfg.NeutralRadius) {
		if !r.dwelling {
			r.dwelling = true
			r.neutralSince = now
		} else if now.Sub(r.neutralSince) >= r.cfg.NeutralHold {
			r.armed = true
		}
	} else {
		r.dwelling = false
		r.neutralSince = time.Time{}
	}

	if !r.armed || !r.cooledDown(now) {
		return None
	}

	swipe := Classify(r.history, r.cfg.DXThresh, r.cfg.DYThresh)
	if swipe.Direction == None {
		return None
	}

	swipe.At = now
	r.last = swipe
	r.fired = true
	r.armed = false
	return swipe.Direction
}

// cooledDown reports whether enough time has passed since the last swipe.
// Before the first swipe there is nothing to cool down from.
func (r *Recognizer) cooledDown(now time.Time) bool {
	return !r.fired || now.Sub(r.last.At) >= r.cfg.Cooldown
}

// evict drops samples older than the history window. History is time-ordered,
// so only a prefix is ever removed.
func (r *Recognizer) evict(now time.Time) {
	n := 0
	for n < len(r.history) && now.Sub(r.history[n].At) > r.cfg.HistoryWindow {
		n++
	}
	if n == 0 {
		return
	}
	r.history = append(r.history[:0], r.history[n:]...)
}

// State returns a snapshot of the recognizer's gate and history.
func (r *Recognizer) State() State {
	return State{
		Armed:      r.armed,
		Dwelling:   r.dwelling,
		HistoryLen: len(r.history),
		Last:       r.last,
	}
}

// History returns a copy of the retained samples, oldest first.
func (r *Recognizer) History() []Sample {
	out := make([]Sample, len(r.history))
	copy(out, r.history)
	return out
}

// Reset returns the recognizer to its initial armed state with no history.
func (r *Recognizer) Reset() {
	r.history = r.history[:0]
	r.armed = true
	r.dwelling = false
	r.neutralSince = time.Time{}
	r.fired = false
	r.last = Swipe{}
}

// InNeutralZone reports whether p lies within radius of the frame center.
func InNeutralZone(p Point, radius float64) bool {
	return math.Hypot(p.X-Center.X, p.Y-Center.Y) <= radius
}

// Classify compares the oldest and newest samples of history and returns the
// swipe along the dominant axis. Only that axis is tested against its
// threshold, so a diagonal motion yields at most one direction.
//
// Net displacement ignores path shape: a motion that goes out and comes back
// within the window cancels itself.
func Classify(history []Sample, dxThresh, dyThresh float64) Swipe {
	if len(history) < 2 {
		return Swipe{}
	}
	oldest, newest := history[0], history[len(history)-1]
	s := Swipe{DX: newest.X - oldest.X, DY: newest.Y - oldest.Y}

	if math.Abs(s.DX) >= math.Abs(s.DY) {
		switch {
		case s.DX <= -dxThresh:
			s.Direction = Left
		case s.DX >= dxThresh:
			s.Direction = Right
		}
	} else {
		// y grows downwards in frame coordinates.
		switch {
		case s.DY <= -dyThresh:
			s.Direction = Up
		case s.DY >= dyThresh:
			s.Direction = Down
		}
	}
	return s
}
