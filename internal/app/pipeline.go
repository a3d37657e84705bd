package app

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/swipekeys/internal/capture"
	"github.com/ayusman/swipekeys/internal/detector"
	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/hud"
	"github.com/ayusman/swipekeys/internal/store"
)

// readRetryDelay is the pause after a failed camera read.
const readRetryDelay = 100 * time.Millisecond

// runPipeline reads frames until ctx is cancelled.
//
// Every frame read is processed. Motion only decides how fast frames are
// read: ActiveFPS while the scene changed within the throttle hold, IdleFPS
// otherwise.
func (a *App) runPipeline(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		frame, err := a.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrNoMoreFrames) {
				a.logger.Info("camera has no more frames")
				return
			}
			a.logger.Warn("error reading frame", "err", err)
			timer.Reset(readRetryDelay)
			continue
		}

		moving, _ := a.motion.Detect(frame)
		if fps := a.throttle.Update(start, moving); fps != a.camera.FPS() {
			a.camera.SetFPS(fps)
			a.logger.Debug("frame rate changed", "fps", fps, "moving", moving)
		}

		a.Process(ctx, start, frame)
		frame.Close()

		interval := time.Second / time.Duration(a.camera.FPS())
		timer.Reset(max(interval-time.Since(start), 0))
	}
}

// Process runs one frame through detection, recognition, key dispatch, the
// event log and the HUD. It returns the swipe fired on this frame, or None.
// The frame is annotated in place.
func (a *App) Process(ctx context.Context, now time.Time, frame *gocv.Mat) gesture.Direction {
	enabled, onSwipe := a.applyPending()

	var tip *gesture.Point
	dir := gesture.None
	if enabled {
		hands, err := a.detector.Detect(frame)
		if err != nil {
			a.logger.Warn("hand detection failed", "err", err)
		} else {
			tip = detector.Fingertip(hands, a.minScore)
		}

		dir = a.recognizer.Observe(now, tip)
		if dir != gesture.None {
			a.fire(ctx, dir, onSwipe)
		}
	}

	if a.publisher != nil {
		a.publishHUD(now, frame, tip, dir, enabled)
	}

	return dir
}

// applyPending hands control changes over to the pipeline goroutine.
func (a *App) applyPending() (bool, func(store.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingCfg != nil {
		a.recognizer = gesture.NewRecognizer(*a.pendingCfg)
		a.pendingCfg = nil
		a.pendingReset = false
	}
	if a.pendingReset {
		a.recognizer.Reset()
		a.pendingReset = false
	}
	return a.enabled, a.onSwipe
}

func (a *App) fire(ctx context.Context, dir gesture.Direction, onSwipe func(store.Event)) {
	press, err := a.dispatcher.Dispatch(ctx, dir)
	if err != nil {
		a.logger.Error("key injection failed", "direction", dir, "key", press.Key, "err", err)
	}

	last := a.recognizer.State().Last
	event := store.Event{
		Direction: dir,
		Key:       press.Key,
		Mode:      press.Mode,
		DX:        last.DX,
		DY:        last.DY,
		FiredAt:   last.At,
	}

	if a.store != nil {
		if err := a.store.Events().Create(&event); err != nil {
			a.logger.Warn("failed to log swipe", "err", err)
		}
	}

	if onSwipe != nil {
		onSwipe(event)
	}
}

func (a *App) publishHUD(now time.Time, frame *gocv.Mat, tip *gesture.Point, dir gesture.Direction, enabled bool) {
	st := a.recognizer.State()
	f := hud.Frame{
		At:            now,
		Tip:           tip,
		NeutralRadius: a.recognizer.Config().NeutralRadius,
		Armed:         st.Armed,
		Dwelling:      st.Dwelling,
		Fired:         dir,
		Last:          st.Last.Direction,
		LastAt:        st.Last.At,
		Live:          a.dispatcher.Live(),
		Enabled:       enabled,
	}
	if frame != nil {
		f.Width, f.Height = frame.Cols(), frame.Rows()
	}

	hud.Draw(frame, f)
	if err := a.publisher.Publish(frame, f); err != nil {
		a.logger.Warn("failed to publish frame", "err", err)
	}
}
