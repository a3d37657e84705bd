package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/swipekeys/internal/app"
	"github.com/ayusman/swipekeys/internal/capture"
	"github.com/ayusman/swipekeys/internal/config"
	"github.com/ayusman/swipekeys/internal/detector"
	"github.com/ayusman/swipekeys/internal/hud"
	"github.com/ayusman/swipekeys/internal/keys"
	"github.com/ayusman/swipekeys/internal/plugin"
	"github.com/ayusman/swipekeys/internal/server"
	"github.com/ayusman/swipekeys/internal/store"
	"github.com/ayusman/swipekeys/internal/tray"
)

var version = "dev"

const defaultConfigPath = "~/.swipekeys/config.yaml"

// The preview window and the tray both need the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML config file (default "+defaultConfigPath+" when present)")
		cameraID    = flag.Int("camera", 0, "Camera device index")
		mirror      = flag.Bool("mirror", true, "Mirror frames horizontally")
		keySet      = flag.String("keys", string(keys.Arrows), "Key set: arrows or wasd")
		live        = flag.Bool("live", false, "Send key presses (LIVE); otherwise only log them (TEST)")
		backend     = flag.String("backend", config.BackendRobotgo, "Key injection backend: robotgo, plugin or log")
		addr        = flag.String("addr", "127.0.0.1:8765", "Dashboard listen address; empty disables the dashboard")
		dbPath      = flag.String("db", "~/.swipekeys/swipekeys.db", "SQLite database path")
		profile     = flag.String("profile", "", "Stored tuning profile to activate")
		preview     = flag.Bool("preview", true, "Show the camera preview window")
		trayIcon    = flag.Bool("tray", false, "Show a system tray icon instead of the preview window")
		logLevelStr = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("swipekeys", version)
		return
	}

	var overrides config.FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			overrides.CameraDevice = cameraID
		case "mirror":
			overrides.Mirror = mirror
		case "keys":
			overrides.KeySet = keySet
		case "live":
			overrides.Live = live
		case "backend":
			overrides.Backend = backend
		case "addr":
			overrides.ServerAddr = addr
		case "db":
			overrides.StorePath = dbPath
		case "profile":
			overrides.Profile = profile
		case "preview":
			overrides.Preview = preview
		case "tray":
			overrides.Tray = trayIcon
			if *trayIcon && overrides.Preview == nil {
				off := false
				overrides.Preview = &off
			}
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	overrides.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stderr, cfg.Logging.Level)
	slog.SetDefault(logger)

	if err := run(cfg, overrides, logger); err != nil {
		logger.Error("swipekeys failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads path, or the default config file when it exists, on top
// of the built-in defaults.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadConfigFile(path)
	}
	if _, err := os.Stat(config.ExpandPath(defaultConfigPath)); err == nil {
		return config.LoadConfigFile(defaultConfigPath)
	}
	return config.DefaultConfig(), nil
}

func run(cfg config.Config, overrides config.FlagOverrides, logger *slog.Logger) error {
	logger.Info("starting swipekeys", "version", version, "keys", cfg.Keys.Set, "backend", cfg.Keys.Backend)

	dbPath := config.ExpandPath(cfg.Store.Path)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	injector, err := newInjector(cfg, logger)
	if err != nil {
		return err
	}
	dispatcher := keys.NewDispatcher(cfg.KeySet(), injector, cfg.Keys.Live, logger)

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(), logger)
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}

	publisher := hud.NewPublisher()

	a, err := app.New(app.Config{
		Camera:     capture.NewCamera(cfg.CaptureConfig()),
		Detector:   det,
		Gesture:    cfg.GestureConfig(),
		MinScore:   cfg.Detector.MinConfidence,
		Dispatcher: dispatcher,
		Store:      st,
		Publisher:  publisher,
		Throttle: capture.Throttle{
			IdleFPS:   cfg.Camera.IdleFPS,
			ActiveFPS: cfg.Camera.ActiveFPS,
			Hold:      time.Duration(cfg.Camera.IdleTimeoutMS) * time.Millisecond,
		},
		MotionThreshold: cfg.Camera.MotionThreshold,
		Retention:       time.Duration(cfg.Store.RetentionDays) * 24 * time.Hour,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	if err := a.Restore(cfg.Gesture.Profile); err != nil {
		return err
	}
	// An explicit -live wins over the remembered mode.
	if overrides.Live != nil {
		a.SetLive(*overrides.Live)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Run(gctx)
	})

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: staticDir(cfg.Server.StaticDir),
			Store:     st,
			Publisher: publisher,
			Detection: a,
			Logger:    logger,
		})
		g.Go(func() error {
			return srv.Run(gctx, cfg.Server.Addr)
		})
	}

	switch {
	case cfg.UI.Preview:
		hud.NewPreview("swipekeys", publisher).Run(gctx, stop)
	case cfg.UI.Tray:
		runTray(gctx, a, cfg, stop, logger)
	default:
		<-gctx.Done()
	}

	stop()
	publisher.Close()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("swipekeys stopped")
	return nil
}

func newInjector(cfg config.Config, logger *slog.Logger) (keys.Injector, error) {
	switch cfg.Keys.Backend {
	case config.BackendPlugin:
		mgr := plugin.NewManager(config.ExpandPath(cfg.Keys.PluginDir), logger)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		p, err := mgr.Find(plugin.ActionPress, runtime.GOOS)
		if err != nil {
			return nil, fmt.Errorf("key plugin for %s: %w", runtime.GOOS, err)
		}
		logger.Info("using key plugin", "plugin", p.Manifest.Name, "version", p.Manifest.Version)
		timeout := time.Duration(cfg.Keys.PluginTimeoutMS) * time.Millisecond
		return &keys.PluginInjector{Executor: plugin.NewExecutor(timeout, logger), Plugin: p}, nil
	case config.BackendLog:
		return keys.NewLogInjector(logger), nil
	default:
		return keys.RobotgoInjector{}, nil
	}
}

func runTray(ctx context.Context, a *app.App, cfg config.Config, quit func(), logger *slog.Logger) {
	t := tray.New(a)
	a.OnSwipe(func(e store.Event) {
		t.SetLastSwipe(e.Direction)
	})
	t.OnQuit(quit)
	if cfg.Server.Enabled {
		url := "http://" + cfg.Server.Addr
		t.OnOpenDashboard(func() {
			if err := openBrowser(url); err != nil {
				logger.Warn("failed to open dashboard", "url", url, "err", err)
			}
		})
	}

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// staticDir returns the configured dashboard directory or the first "web"
// directory found next to the working directory or under ~/.swipekeys.
func staticDir(configured string) string {
	if configured != "" {
		return config.ExpandPath(configured)
	}

	candidates := []string{"web", "../web", "../../web", config.ExpandPath("~/.swipekeys/web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
