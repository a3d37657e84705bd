// Package config loads the YAML configuration for swipekeys.
//
// Precedence is defaults, then the config file, then command-line overrides.
// Validate is called once everything is merged so the rest of the program can
// assume a well-formed Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/swipekeys/internal/capture"
	"github.com/ayusman/swipekeys/internal/detector"
	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/keys"
)

// Key injection backends.
const (
	BackendRobotgo = "robotgo"
	BackendPlugin  = "plugin"
	BackendLog     = "log"
)

// Config is the top-level YAML configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Keys     KeysConfig     `yaml:"keys"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type CameraConfig struct {
	Device int  `yaml:"device"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Mirror bool `yaml:"mirror"`

	// Capture rate while the scene moves and after IdleTimeoutMS of stillness.
	ActiveFPS     int `yaml:"active_fps"`
	IdleFPS       int `yaml:"idle_fps"`
	IdleTimeoutMS int `yaml:"idle_timeout_ms"`
	// Percent of changed pixels counted as motion.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

type DetectorConfig struct {
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
	ModelComplexity       int     `yaml:"model_complexity"`
	Script                string  `yaml:"script,omitempty"`
	Python                string  `yaml:"python,omitempty"`
}

// GestureConfig is the recognizer tuning with durations in milliseconds.
type GestureConfig struct {
	HistoryMS     int     `yaml:"history_ms"`
	CooldownMS    int     `yaml:"cooldown_ms"`
	DXThresh      float64 `yaml:"dx_thresh"`
	DYThresh      float64 `yaml:"dy_thresh"`
	NeutralRadius float64 `yaml:"neutral_radius"`
	NeutralHoldMS int     `yaml:"neutral_hold_ms"`
	AutoRearmMS   int     `yaml:"auto_rearm_ms"`
	// Profile names a stored profile that replaces the values above at startup.
	Profile string `yaml:"profile,omitempty"`
}

type KeysConfig struct {
	Set             string `yaml:"set"`
	Live            bool   `yaml:"live"`
	Backend         string `yaml:"backend"`
	PluginDir       string `yaml:"plugin_dir"`
	PluginTimeoutMS int    `yaml:"plugin_timeout_ms"`
}

type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir,omitempty"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
	// Events older than this are pruned at startup. Zero keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// UIConfig selects the main-thread front end. Both need the main OS thread,
// so at most one may be enabled.
type UIConfig struct {
	Preview bool `yaml:"preview"`
	Tray    bool `yaml:"tray"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	g := gesture.DefaultConfig()
	d := detector.DefaultConfig()

	return Config{
		Camera: CameraConfig{
			Device:          0,
			Width:           capture.DefaultWidth,
			Height:          capture.DefaultHeight,
			Mirror:          true,
			ActiveFPS:       capture.DefaultFPS,
			IdleFPS:         10,
			IdleTimeoutMS:   3000,
			MotionThreshold: 1.0,
		},
		Detector: DetectorConfig{
			MaxHands:              d.MaxHands,
			MinConfidence:         d.MinConfidence,
			MinTrackingConfidence: d.MinTrackingConf,
			ModelComplexity:       d.ModelComplexity,
		},
		Gesture: GestureConfig{
			HistoryMS:     int(g.HistoryWindow.Milliseconds()),
			CooldownMS:    int(g.Cooldown.Milliseconds()),
			DXThresh:      g.DXThresh,
			DYThresh:      g.DYThresh,
			NeutralRadius: g.NeutralRadius,
			NeutralHoldMS: int(g.NeutralHold.Milliseconds()),
			AutoRearmMS:   int(g.AutoRearm.Milliseconds()),
		},
		Keys: KeysConfig{
			Set:             string(keys.Arrows),
			Live:            false,
			Backend:         BackendRobotgo,
			PluginDir:       "~/.swipekeys/plugins",
			PluginTimeoutMS: 2000,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8765",
		},
		Store: StoreConfig{
			Path:          "~/.swipekeys/swipekeys.db",
			RetentionDays: 30,
		},
		UI: UIConfig{
			Preview: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads a YAML file on top of DefaultConfig. Unknown fields
// are rejected so typos surface as errors.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of DefaultConfig.
func Parse(b []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides holds values given on the command line. Nil fields are left alone.
type FlagOverrides struct {
	CameraDevice *int
	Mirror       *bool
	KeySet       *string
	Live         *bool
	Backend      *string
	ServerAddr   *string
	StorePath    *string
	Profile      *string
	Preview      *bool
	Tray         *bool
	LogLevel     *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.CameraDevice != nil {
		cfg.Camera.Device = *o.CameraDevice
	}
	if o.Mirror != nil {
		cfg.Camera.Mirror = *o.Mirror
	}
	if o.KeySet != nil {
		cfg.Keys.Set = *o.KeySet
	}
	if o.Live != nil {
		cfg.Keys.Live = *o.Live
	}
	if o.Backend != nil {
		cfg.Keys.Backend = *o.Backend
	}
	if o.ServerAddr != nil {
		cfg.Server.Addr = *o.ServerAddr
		cfg.Server.Enabled = *o.ServerAddr != ""
	}
	if o.StorePath != nil {
		cfg.Store.Path = *o.StorePath
	}
	if o.Profile != nil {
		cfg.Gesture.Profile = *o.Profile
	}
	if o.Preview != nil {
		cfg.UI.Preview = *o.Preview
	}
	if o.Tray != nil {
		cfg.UI.Tray = *o.Tray
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
func (c *Config) Validate() error {
	if c.Camera.Device < 0 {
		return errors.New("camera.device must be >= 0")
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return errors.New("camera.width and camera.height must be >= 0")
	}
	if c.Camera.ActiveFPS <= 0 || c.Camera.ActiveFPS > 120 {
		return errors.New("camera.active_fps must be between 1 and 120")
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return errors.New("camera.idle_fps must be between 1 and camera.active_fps")
	}
	if c.Camera.IdleTimeoutMS <= 0 {
		return errors.New("camera.idle_timeout_ms must be > 0")
	}
	if c.Camera.MotionThreshold <= 0 || c.Camera.MotionThreshold > 100 {
		return errors.New("camera.motion_threshold must be in (0, 100]")
	}

	if c.Detector.MaxHands < 1 {
		return errors.New("detector.max_hands must be >= 1")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("detector.min_confidence must be in [0, 1]")
	}
	if c.Detector.MinTrackingConfidence < 0 || c.Detector.MinTrackingConfidence > 1 {
		return errors.New("detector.min_tracking_confidence must be in [0, 1]")
	}
	if c.Detector.ModelComplexity < 0 || c.Detector.ModelComplexity > 1 {
		return errors.New("detector.model_complexity must be 0 or 1")
	}

	if err := c.GestureConfig().Validate(); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}

	if _, err := keys.ParseKeySet(c.Keys.Set); err != nil {
		return fmt.Errorf("keys.set: %w", err)
	}
	switch c.Keys.Backend {
	case BackendRobotgo, BackendPlugin, BackendLog:
	default:
		return fmt.Errorf("keys.backend must be %q, %q or %q", BackendRobotgo, BackendPlugin, BackendLog)
	}
	if c.Keys.Backend == BackendPlugin && c.Keys.PluginDir == "" {
		return errors.New("keys.plugin_dir must not be empty when keys.backend is plugin")
	}
	if c.Keys.PluginTimeoutMS <= 0 {
		return errors.New("keys.plugin_timeout_ms must be > 0")
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server.addr must not be empty when the server is enabled")
	}

	if c.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if c.Store.RetentionDays < 0 {
		return errors.New("store.retention_days must be >= 0")
	}

	if c.UI.Preview && c.UI.Tray {
		return errors.New("ui.preview and ui.tray both need the main thread; enable at most one")
	}

	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// GestureConfig converts the millisecond fields into a recognizer config.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		HistoryWindow: ms(c.Gesture.HistoryMS),
		Cooldown:      ms(c.Gesture.CooldownMS),
		DXThresh:      c.Gesture.DXThresh,
		DYThresh:      c.Gesture.DYThresh,
		NeutralRadius: c.Gesture.NeutralRadius,
		NeutralHold:   ms(c.Gesture.NeutralHoldMS),
		AutoRearm:     ms(c.Gesture.AutoRearmMS),
	}
}

// CaptureConfig returns the camera settings.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.Device,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.Camera.ActiveFPS,
		Mirror:   c.Camera.Mirror,
	}
}

// DetectorConfig returns the hand detector settings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
		ModelComplexity: c.Detector.ModelComplexity,
		Script:          ExpandPath(c.Detector.Script),
		Python:          ExpandPath(c.Detector.Python),
	}
}

// KeySet returns the validated key set. Call after Validate.
func (c *Config) KeySet() keys.KeySet {
	return keys.KeySet(c.Keys.Set)
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
