package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/pegasus-engine/pegasus/assets"
	"github.com/pegasus-engine/pegasus/platform"
	"github.com/pegasus-engine/pegasus/renderer"
)

const applicationName = "Pegasus"

type config struct {
	width, height int
	validation    bool
	vsync         bool
	assetRoot     string
	model         string
	inFlight      int
	debug         bool
}

func parseFlags() config {
	var cfg config
	flag.IntVar(&cfg.width, "width", 1280, "initial window width")
	flag.IntVar(&cfg.height, "height", 720, "initial window height")
	flag.BoolVar(&cfg.validation, "validation", false, "enable the Khronos validation layer")
	flag.BoolVar(&cfg.vsync, "vsync", true, "present with FIFO")
	flag.StringVar(&cfg.assetRoot, "assets", "assets", "asset root directory")
	flag.StringVar(&cfg.model, "model", "", "optional .obj mesh relative to the asset root")
	flag.IntVar(&cfg.inFlight, "inflight", renderer.DefaultInFlightCount, "command buffers in the ring")
	flag.BoolVar(&cfg.debug, "debug", false, "log at debug level")
	flag.Parse()
	return cfg
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("run", uuid.NewString()))
}

func run(cfg config) error {
	logger := newLogger(cfg.debug)

	manifest := assets.DefaultManifest()
	manifest.Mesh = cfg.model

	bundle, err := assets.Load(os.DirFS(cfg.assetRoot), manifest)
	if err != nil {
		return errors.Wrapf(err, "load assets from %s", cfg.assetRoot)
	}

	window, err := platform.Open(applicationName, cfg.width, cfg.height)
	if err != nil {
		return err
	}
	defer window.Destroy()

	opts := renderer.DefaultOptions()
	opts.Validation = cfg.validation
	opts.Vsync = cfg.vsync
	opts.InFlightCount = cfg.inFlight
	opts.ApplicationName = applicationName
	opts.Logger = logger

	width, height := window.DrawableSize()
	r, err := renderer.Initialize(window, width, height, opts, renderer.Scene{
		VertexShader:   bundle.VertexShader,
		FragmentShader: bundle.FragmentShader,
		Geometry:       bundle.Geometry,
	})
	if err != nil {
		return err
	}
	defer r.Shutdown()

	window.SetTitle(windowTitle(applicationName, r.DeviceName(), 0))

	a := &app{logger: logger, renderer: r}
	timer := newStepTimer()

	for a.running() {
		for _, msg := range window.Pump() {
			platform.Dispatch(msg, a)
		}
		if !a.running() {
			break
		}

		err = r.DrawFrame()
		if err != nil {
			return err
		}

		if timer.tick() {
			window.SetTitle(windowTitle(applicationName, r.DeviceName(), timer.framesPerSecond()))
		}
	}

	stats := r.Stats()
	logger.Info("exiting",
		slog.Int("frames", stats.Frames),
		slog.Int("skipped", stats.Skipped),
		slog.Int("rebuilds", stats.Rebuilds))
	return a.err
}

func main() {
	runtime.LockOSThread()
	cfg := parseFlags()

	err := run(cfg)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
