package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/swipekeys/internal/capture"
	"github.com/ayusman/swipekeys/internal/detector"
	"github.com/ayusman/swipekeys/internal/fixtures"
	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/hud"
	"github.com/ayusman/swipekeys/internal/keys"
	"github.com/ayusman/swipekeys/internal/store"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type testApp struct {
	*App
	det *detector.MockDetector
}

func newTestApp(t *testing.T, mutate func(*Config)) testApp {
	t.Helper()
	det := detector.NewMockDetector()
	cfg := Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: det,
		Gesture:  gesture.DefaultConfig(),
		MinScore: 0.6,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.motion.Close)
	return testApp{App: a, det: det}
}

// step queues one detector result for tip and processes a frame without pixels.
func (ta testApp) step(now time.Time, tip *gesture.Point) gesture.Direction {
	if tip == nil {
		ta.det.Queue(nil)
	} else {
		ta.det.Queue([]detector.HandLandmarks{detector.PointingAt(tip.X, tip.Y)})
	}
	return ta.Process(context.Background(), now, nil)
}

func swipeLeft(ta testApp, at time.Time) gesture.Direction {
	ta.step(at, &gesture.Point{X: 0.70, Y: 0.50})
	return ta.step(at.Add(400*time.Millisecond), &gesture.Point{X: 0.30, Y: 0.50})
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Detector: detector.NewMockDetector(), Gesture: gesture.DefaultConfig()})
	assert.Error(t, err, "missing camera")

	_, err = New(Config{Camera: capture.NewMockCamera(nil, false), Gesture: gesture.DefaultConfig()})
	assert.Error(t, err, "missing detector")

	bad := gesture.DefaultConfig()
	bad.DXThresh = 0
	_, err = New(Config{Camera: capture.NewMockCamera(nil, false), Detector: detector.NewMockDetector(), Gesture: bad})
	assert.Error(t, err, "invalid tuning")
}

func TestApp_Process_Trajectories(t *testing.T) {
	names, err := fixtures.Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tr, err := fixtures.Load(name)
			require.NoError(t, err)

			s := newTestStore(t)
			ta := newTestApp(t, func(c *Config) { c.Store = s })

			got := tr.Replay(base, ta.step)
			assert.Equal(t, len(tr.Expect), len(got), "swipes: %v", got)
			for i := range min(len(got), len(tr.Expect)) {
				assert.Equal(t, tr.Expect[i].Direction, got[i].Direction)
				assert.InDelta(t, tr.Expect[i].T, got[i].T, 1e-9)
			}

			events, err := s.Events().List(0)
			require.NoError(t, err)
			assert.Len(t, events, len(tr.Expect))
		})
	}
}

func TestApp_Process_RecordsSwipe(t *testing.T) {
	s := newTestStore(t)
	injector := keys.NewLogInjector(nil)
	ta := newTestApp(t, func(c *Config) {
		c.Store = s
		c.Dispatcher = keys.NewDispatcher(keys.Arrows, injector, true, nil)
	})

	var seen []store.Event
	ta.OnSwipe(func(e store.Event) { seen = append(seen, e) })

	require.Equal(t, gesture.Left, swipeLeft(ta, base))

	assert.Equal(t, []string{"left"}, injector.Presses())
	require.Len(t, seen, 1)
	assert.Equal(t, gesture.Left, seen[0].Direction)
	assert.Equal(t, keys.ModeLive, seen[0].Mode)

	events, err := s.Events().List(0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "left", e.Key)
	assert.Equal(t, keys.ModeLive, e.Mode)
	assert.InDelta(t, -0.40, e.DX, 1e-9)
	assert.InDelta(t, 0, e.DY, 1e-9)
	assert.True(t, e.FiredAt.Equal(base.Add(400*time.Millisecond)), "fired at %s", e.FiredAt)
}

func TestApp_Process_TestModeDoesNotInject(t *testing.T) {
	injector := keys.NewLogInjector(nil)
	ta := newTestApp(t, func(c *Config) {
		c.Dispatcher = keys.NewDispatcher(keys.Arrows, injector, false, nil)
	})

	var seen []store.Event
	ta.OnSwipe(func(e store.Event) { seen = append(seen, e) })

	require.Equal(t, gesture.Left, swipeLeft(ta, base))
	assert.Empty(t, injector.Presses())
	require.Len(t, seen, 1)
	assert.Equal(t, keys.ModeTest, seen[0].Mode)
}

func TestApp_Process_InjectionFailureKeepsRunning(t *testing.T) {
	s := newTestStore(t)
	failing := keys.InjectorFunc(func(context.Context, string) error { return errors.New("no accessibility permission") })
	ta := newTestApp(t, func(c *Config) {
		c.Store = s
		c.Dispatcher = keys.NewDispatcher(keys.Arrows, failing, true, nil)
	})

	require.Equal(t, gesture.Left, swipeLeft(ta, base))
	// Auto re-arm and cooldown have passed one second later.
	require.Equal(t, gesture.Left, swipeLeft(ta, base.Add(time.Second)))

	counts, err := s.Events().Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[gesture.Left])
}

func TestApp_Process_DetectorErrorIsNoHand(t *testing.T) {
	ta := newTestApp(t, nil)

	ta.step(base, &gesture.Point{X: 0.70, Y: 0.50})
	ta.det.SetError(errors.New("service crashed"))
	assert.Equal(t, gesture.None, ta.Process(context.Background(), base.Add(200*time.Millisecond), nil))
	ta.det.SetError(nil)

	assert.Equal(t, gesture.Left, ta.step(base.Add(400*time.Millisecond), &gesture.Point{X: 0.30, Y: 0.50}))
}

func TestApp_Process_LowConfidenceHandIgnored(t *testing.T) {
	ta := newTestApp(t, nil)

	weak := func(x float64) []detector.HandLandmarks {
		h := detector.PointingAt(x, 0.5)
		h.Score = 0.3
		return []detector.HandLandmarks{h}
	}
	ta.det.Queue(weak(0.7), weak(0.3))

	assert.Equal(t, gesture.None, ta.Process(context.Background(), base, nil))
	assert.Equal(t, gesture.None, ta.Process(context.Background(), base.Add(400*time.Millisecond), nil))
	assert.Zero(t, ta.recognizer.State().HistoryLen)
}

func TestApp_SetEnabled(t *testing.T) {
	s := newTestStore(t)
	ta := newTestApp(t, func(c *Config) { c.Store = s })
	require.True(t, ta.IsEnabled())

	ta.step(base, &gesture.Point{X: 0.70, Y: 0.50})

	ta.SetEnabled(false)
	assert.False(t, ta.IsEnabled())
	assert.False(t, s.Settings().GetBool(store.SettingEnabled, true))

	calls := ta.det.Calls()
	assert.Equal(t, gesture.None, ta.Process(context.Background(), base.Add(200*time.Millisecond), nil))
	assert.Equal(t, calls, ta.det.Calls(), "detector must not run while disabled")

	ta.SetEnabled(true)
	// The pre-pause sample was dropped, so the return leg alone is not a swipe.
	assert.Equal(t, gesture.None, ta.step(base.Add(400*time.Millisecond), &gesture.Point{X: 0.30, Y: 0.50}))
	assert.Equal(t, 1, ta.recognizer.State().HistoryLen)
}

func TestApp_SetLive(t *testing.T) {
	s := newTestStore(t)
	ta := newTestApp(t, func(c *Config) { c.Store = s })

	assert.False(t, ta.Live())
	ta.SetLive(true)
	assert.True(t, ta.Live())
	assert.True(t, s.Settings().GetBool(store.SettingLive, false))
}

func TestApp_ActivateProfile(t *testing.T) {
	s := newTestStore(t)
	ta := newTestApp(t, func(c *Config) { c.Store = s })

	strict := gesture.DefaultConfig()
	strict.DXThresh = 0.5
	p := &store.Profile{ID: "p1", Name: "strict", Gesture: strict, KeySet: string(keys.WASD)}
	require.NoError(t, s.Profiles().Create(p))

	require.NoError(t, ta.ActivateProfile(p))
	assert.Equal(t, "strict", ta.ProfileName())
	assert.Equal(t, strict, ta.GestureConfig())
	assert.Equal(t, keys.WASD, ta.dispatcher.KeySet())

	id, err := s.Settings().Get(store.SettingActiveProfile)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	assert.Equal(t, gesture.None, swipeLeft(ta, base), "0.4 is below the stricter threshold")

	var seen []store.Event
	ta.OnSwipe(func(e store.Event) { seen = append(seen, e) })
	ta.step(base.Add(2*time.Second), &gesture.Point{X: 0.90, Y: 0.50})
	require.Equal(t, gesture.Left, ta.step(base.Add(2300*time.Millisecond), &gesture.Point{X: 0.30, Y: 0.50}))
	assert.Equal(t, "a", seen[0].Key)

	t.Run("rejects invalid profiles", func(t *testing.T) {
		bad := &store.Profile{Name: "bad", Gesture: gesture.Config{}, KeySet: "arrows"}
		assert.Error(t, ta.ActivateProfile(bad))

		badKeys := &store.Profile{Name: "bad-keys", Gesture: gesture.DefaultConfig(), KeySet: "ijkl"}
		assert.Error(t, ta.ActivateProfile(badKeys))

		assert.Equal(t, "strict", ta.ProfileName())
	})
}

func TestApp_Restore(t *testing.T) {
	t.Run("applies stored state", func(t *testing.T) {
		s := newTestStore(t)
		p := &store.Profile{ID: "p1", Name: "couch", Gesture: gesture.DefaultConfig(), KeySet: "wasd"}
		require.NoError(t, s.Profiles().Create(p))
		require.NoError(t, s.Settings().SetBool(store.SettingEnabled, false))
		require.NoError(t, s.Settings().SetBool(store.SettingLive, true))
		require.NoError(t, s.Settings().Set(store.SettingActiveProfile, "p1"))

		ta := newTestApp(t, func(c *Config) { c.Store = s })
		require.NoError(t, ta.Restore(""))

		assert.False(t, ta.IsEnabled())
		assert.True(t, ta.Live())
		assert.Equal(t, "couch", ta.ProfileName())
	})

	t.Run("named profile wins", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Profiles().Create(&store.Profile{ID: "p1", Name: "one", Gesture: gesture.DefaultConfig(), KeySet: "arrows"}))
		require.NoError(t, s.Profiles().Create(&store.Profile{ID: "p2", Name: "two", Gesture: gesture.DefaultConfig(), KeySet: "arrows"}))
		require.NoError(t, s.Settings().Set(store.SettingActiveProfile, "p1"))

		ta := newTestApp(t, func(c *Config) { c.Store = s })
		require.NoError(t, ta.Restore("two"))
		assert.Equal(t, "two", ta.ProfileName())
	})

	t.Run("unknown named profile", func(t *testing.T) {
		ta := newTestApp(t, func(c *Config) { c.Store = newTestStore(t) })
		err := ta.Restore("missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("stale active profile is forgotten", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Settings().Set(store.SettingActiveProfile, "gone"))

		ta := newTestApp(t, func(c *Config) { c.Store = s })
		require.NoError(t, ta.Restore(""))
		assert.Empty(t, ta.ProfileName())

		_, err := s.Settings().Get(store.SettingActiveProfile)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("no store", func(t *testing.T) {
		ta := newTestApp(t, nil)
		assert.NoError(t, ta.Restore(""))
		assert.Error(t, ta.Restore("anything"))
	})
}

func TestApp_Process_PublishesHUD(t *testing.T) {
	pub := hud.NewPublisher()
	ta := newTestApp(t, func(c *Config) { c.Publisher = pub })

	frames, cancel := pub.Subscribe()
	defer cancel()

	ta.step(base, &gesture.Point{X: 0.70, Y: 0.50})
	ta.step(base.Add(400*time.Millisecond), &gesture.Point{X: 0.30, Y: 0.50})

	first := <-frames
	assert.True(t, first.Armed)
	assert.True(t, first.Enabled)
	require.NotNil(t, first.Tip)
	assert.InDelta(t, 0.70, first.Tip.X, 1e-9)
	assert.Equal(t, gesture.DefaultNeutralRadius, first.NeutralRadius)

	second := <-frames
	assert.Equal(t, gesture.Left, second.Fired)
	assert.Equal(t, gesture.Left, second.Last)
	assert.False(t, second.Armed)
	assert.Equal(t, "ACTION: LEFT", second.Banner())

	_, latest, seq := pub.Latest()
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, second, latest)
}

func TestModeName(t *testing.T) {
	assert.Equal(t, "live", modeName(true))
	assert.Equal(t, "test", modeName(false))
}
