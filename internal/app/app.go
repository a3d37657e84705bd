// Package app wires the camera, hand detector, swipe recognizer and key
// dispatcher into the swipekeys detection pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/swipekeys/internal/capture"
	"github.com/ayusman/swipekeys/internal/detector"
	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/hud"
	"github.com/ayusman/swipekeys/internal/keys"
	"github.com/ayusman/swipekeys/internal/store"
)

// Pipeline defaults.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 10
	// ActiveFPS is the frame rate while the hand is moving.
	ActiveFPS = 30
	// IdleTimeout is how long without motion before dropping to IdleFPS.
	IdleTimeout = 2 * time.Second
	// DefaultMotionThreshold is the percentage of changed pixels that counts as motion.
	DefaultMotionThreshold = 1.0
)

// Config holds the components and tuning of an App.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Gesture  gesture.Config
	// MinScore is the hand confidence below which the fingertip is ignored.
	MinScore float64

	// Dispatcher defaults to TEST mode with arrow keys.
	Dispatcher *keys.Dispatcher
	// Store and Publisher are optional.
	Store     *store.Store
	Publisher *hud.Publisher

	Throttle        capture.Throttle
	MotionThreshold float64
	// Retention drops logged events older than this on Start. Zero keeps everything.
	Retention time.Duration

	Logger *slog.Logger
}

// App is the detection pipeline. Process is called from a single goroutine;
// the control methods are safe to call from anywhere.
type App struct {
	camera     capture.Camera
	detector   detector.Detector
	motion     *capture.MotionDetector
	throttle   capture.Throttle
	dispatcher *keys.Dispatcher
	store      *store.Store
	publisher  *hud.Publisher
	minScore   float64
	retention  time.Duration
	logger     *slog.Logger

	// Owned by the pipeline goroutine.
	recognizer *gesture.Recognizer

	mu           sync.RWMutex
	enabled      bool
	gestureCfg   gesture.Config
	pendingCfg   *gesture.Config
	pendingReset bool
	onSwipe      func(store.Event)
	profileName  string
	cancel       context.CancelFunc
	done         chan struct{}
}

// New creates an App from config. Nothing is opened until Start.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	if err := config.Gesture.Validate(); err != nil {
		return nil, fmt.Errorf("app: gesture config: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dispatcher := config.Dispatcher
	if dispatcher == nil {
		dispatcher = keys.NewDispatcher(keys.Arrows, nil, false, logger)
	}

	threshold := config.MotionThreshold
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}

	throttle := config.Throttle
	if throttle.IdleFPS <= 0 {
		throttle.IdleFPS = IdleFPS
	}
	if throttle.ActiveFPS <= 0 {
		throttle.ActiveFPS = ActiveFPS
	}
	if throttle.Hold <= 0 {
		throttle.Hold = IdleTimeout
	}

	return &App{
		camera:     config.Camera,
		detector:   config.Detector,
		motion:     capture.NewMotionDetector(threshold),
		throttle:   throttle,
		dispatcher: dispatcher,
		store:      config.Store,
		publisher:  config.Publisher,
		minScore:   config.MinScore,
		retention:  config.Retention,
		logger:     logger.With("component", "app"),
		recognizer: gesture.NewRecognizer(config.Gesture),
		enabled:    true,
		gestureCfg: config.Gesture,
	}, nil
}

// SetEnabled turns detection on or off. Turning it off clears the
// recognizer so a half-finished swipe cannot fire after resuming.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	if !enabled {
		a.pendingReset = true
	}
	a.mu.Unlock()

	if changed {
		a.logger.Info("detection toggled", "enabled", enabled)
		a.saveBool(store.SettingEnabled, enabled)
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetLive switches between LIVE (inject keys) and TEST (log only).
func (a *App) SetLive(live bool) {
	if a.dispatcher.Live() == live {
		return
	}
	a.dispatcher.SetLive(live)
	a.logger.Info("key mode changed", "mode", modeName(live))
	a.saveBool(store.SettingLive, live)
}

// Live reports whether keys are injected.
func (a *App) Live() bool {
	return a.dispatcher.Live()
}

// OnSwipe registers fn to be called after every emitted swipe.
func (a *App) OnSwipe(fn func(store.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSwipe = fn
}

// GestureConfig returns the tuning in effect, including a pending profile switch.
func (a *App) GestureConfig() gesture.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gestureCfg
}

// ProfileName returns the name of the active profile, or "" for the configured tuning.
func (a *App) ProfileName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profileName
}

// ActivateProfile switches the recognizer tuning and key set to p. The new
// recognizer starts empty and armed on the next frame.
func (a *App) ActivateProfile(p *store.Profile) error {
	if err := p.Gesture.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	ks, err := keys.ParseKeySet(p.KeySet)
	if err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}

	cfg := p.Gesture
	a.mu.Lock()
	a.gestureCfg = cfg
	a.pendingCfg = &cfg
	a.profileName = p.Name
	a.mu.Unlock()

	a.dispatcher.SetKeySet(ks)
	a.logger.Info("profile activated", "profile", p.Name, "keys", ks)

	if a.store != nil {
		if err := a.store.Settings().Set(store.SettingActiveProfile, p.ID); err != nil {
			a.logger.Warn("failed to save active profile", "err", err)
		}
	}
	return nil
}

// Restore applies the persisted detection state: enabled flag, key mode and
// active profile. A non-empty profileName takes precedence over the stored one.
func (a *App) Restore(profileName string) error {
	if a.store == nil {
		if profileName != "" {
			return errors.New("cannot load a profile without a store")
		}
		return nil
	}

	settings := a.store.Settings()

	a.mu.Lock()
	a.enabled = settings.GetBool(store.SettingEnabled, a.enabled)
	a.mu.Unlock()
	a.dispatcher.SetLive(settings.GetBool(store.SettingLive, a.dispatcher.Live()))

	var (
		p   *store.Profile
		err error
	)
	switch {
	case profileName != "":
		p, err = a.store.Profiles().GetByName(profileName)
		if err != nil {
			return fmt.Errorf("load profile %q: %w", profileName, err)
		}
	default:
		id, getErr := settings.Get(store.SettingActiveProfile)
		if getErr != nil {
			return nil
		}
		p, err = a.store.Profiles().GetByID(id)
		if errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("active profile no longer exists", "id", id)
			return settings.Delete(store.SettingActiveProfile)
		}
		if err != nil {
			return fmt.Errorf("load active profile: %w", err)
		}
	}

	return a.ActivateProfile(p)
}

// Start opens the camera and runs the pipeline in the background until ctx
// is cancelled or Stop is called. Opening the camera fails fast.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.throttle.IdleFPS)
	a.pruneEvents()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.runPipeline(ctx, a.done)

	a.logger.Info("detection pipeline started", "enabled", a.enabled, "mode", modeName(a.dispatcher.Live()))
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", "err", err)
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		a.logger.Warn("error closing detector", "err", err)
	}

	a.logger.Info("detection pipeline stopped")
}

// Run starts the pipeline and blocks until ctx is done or the camera runs
// out of frames.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.mu.RLock()
	done := a.done
	a.mu.RUnlock()

	select {
	case <-ctx.Done():
	case <-done:
	}
	a.Stop()
	return nil
}

// Done is closed when the pipeline goroutine exits. It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

func (a *App) pruneEvents() {
	if a.store == nil || a.retention <= 0 {
		return
	}
	n, err := a.store.Events().DeleteBefore(time.Now().Add(-a.retention))
	if err != nil {
		a.logger.Warn("failed to prune events", "err", err)
		return
	}
	if n > 0 {
		a.logger.Info("pruned old events", "count", n)
	}
}

func (a *App) saveBool(key string, v bool) {
	if a.store == nil {
		return
	}
	if err := a.store.Settings().SetBool(key, v); err != nil {
		a.logger.Warn("failed to save setting", "key", key, "err", err)
	}
}

func modeName(live bool) string {
	if live {
		return keys.ModeLive
	}
	return keys.ModeTest
}
