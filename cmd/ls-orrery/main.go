// Command ls-orrery is a terminal orrery: a planet on its orbit, its spin, and
// a camera that moves between a ground observer, the solar system, and the
// galaxy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/feed"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode  bool
	frames       int
	fps          int
	snapshotPath string
	serveAddr    string
)

const (
	defaultFPS = 30
	maxFPS     = 120
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "JSON scene configuration (defaults if empty)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stderr")
	initialView := flag.String("view", "", "Initial view: ground, system, galactic")
	speed := flag.Float64("speed", 0, "Initial time speed multiplier")
	lat := flag.Float64("lat", 0, "Observer latitude in degrees")
	lon := flag.Float64("lon", 0, "Observer longitude in degrees")
	day := flag.Float64("day", 0, "Initial day of year [0, 365)")
	hour := flag.Float64("hour", 0, "Initial hour of day [0, 24)")
	paused := flag.Bool("paused", false, "Start with the clock paused")
	strategy := flag.String("strategy", "", "Ground anchor strategy: incremental, direct")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.IntVar(&frames, "frames", 0, "Headless: simulate this many frames before output")
	flag.IntVar(&fps, "fps", defaultFPS, "Frames per second for headless and served ticking")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.StringVar(&serveAddr, "serve", "", "Serve the live feed and metrics on this address (e.g., :8080)")
	flag.Parse()

	// Validate frame rate
	if fps < 1 {
		fps = 1
	} else if fps > maxFPS {
		fps = maxFPS
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	// Command-line flags override the file
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "view":
			cfg.View.Initial = *initialView
		case "speed":
			cfg.Clock.Speed = *speed
		case "lat":
			cfg.Observer.LatDeg = *lat
			cfg.Observer.Name = ""
		case "lon":
			cfg.Observer.LonDeg = *lon
			cfg.Observer.Name = ""
		case "day":
			cfg.Clock.DayOfYear = *day
		case "hour":
			cfg.Clock.HourOfDay = *hour
		case "paused":
			cfg.Clock.Paused = *paused
		case "strategy":
			s, err := camera.ParseStrategy(*strategy)
			if err != nil {
				flagErr = errors.Join(flagErr, err)
				return
			}
			cfg.Camera.Strategy = s
		}
	})
	if flagErr != nil {
		fatal(flagErr)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := summaryMode || snapshotPath != "" || frames > 0
	interactive := !headless && isTTY

	// Set up logging
	logger := logging.New(logging.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fatal(fmt.Errorf("open log file: %w", err))
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if interactive {
		// stderr belongs to the alt screen
		logger.SetOutput(io.Discard)
	}
	if *configPath != "" {
		logger.Info("Loaded config from %s", *configPath)
	}

	// Create context cancelled on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize components
	engine, err := scene.New(cfg, logger)
	if err != nil {
		fatal(err)
	}
	stateMgr := state.NewManager(engine, state.Config{MaxEvents: cfg.Scene.MaxEvents})

	// Headless mode: no TUI
	if headless {
		if err := runHeadless(stateMgr); err != nil {
			fatal(err)
		}
		return
	}

	if serveAddr != "" {
		if err := startServer(ctx, stateMgr, cfg, logger); err != nil {
			fatal(err)
		}
	}

	if !interactive {
		if serveAddr == "" {
			fatal(errors.New("stdout is not a terminal: use -summary, -snapshot-path, or -serve"))
		}
		logger.Info("Serving on %s at %d fps", serveAddr, fps)
		if err := feed.Run(ctx, stateMgr, fps); err != nil && !errors.Is(err, context.Canceled) {
			fatal(err)
		}
		return
	}

	// Create Bubble Tea program; the model drives the ticks
	p := tea.NewProgram(ui.New(stateMgr), tea.WithAltScreen(), tea.WithContext(ctx))

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// startServer wires the feed hub and metrics and serves them in the background.
func startServer(ctx context.Context, stateMgr *state.Manager, cfg config.Config, logger *logging.Logger) error {
	rec, err := metrics.NewRecorder(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	rec.Attach(stateMgr, cfg.Camera.Height)

	hub := feed.NewHub(stateMgr, logger)
	hub.Start()

	log := logger.Named("http")
	go func() {
		if err := feed.Serve(ctx, serveAddr, feed.NewMux(hub, rec)); err != nil {
			log.Error("Server stopped: %v", err)
		}
	}()
	return nil
}

// runHeadless simulates frames without a terminal and writes the requested
// outputs.
func runHeadless(stateMgr *state.Manager) error {
	dt := 1.0 / float64(fps)
	stateMgr.Tick(0)
	for i := 0; i < frames; i++ {
		stateMgr.Tick(dt)
	}
	snap := stateMgr.Snapshot()

	// Export JSON if requested
	if snapshotPath != "" {
		var export *scene.Export
		stateMgr.Apply(func(e *scene.Engine) { export = e.Export(time.Now().UTC()) })

		if snapshotPath == "-" {
			if err := export.WriteJSON(os.Stdout); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
		} else {
			f, err := os.Create(snapshotPath)
			if err != nil {
				return fmt.Errorf("create snapshot file: %w", err)
			}
			defer f.Close()
			if err := export.WriteJSON(f); err != nil {
				return fmt.Errorf("write JSON to file: %w", err)
			}
		}
	}

	// Print summary if requested, or when nothing else was asked for
	if summaryMode || snapshotPath == "" {
		scene.WriteSummary(os.Stdout, snap.Frame)
		if len(snap.Events) > 0 {
			fmt.Println()
			fmt.Printf("Events (%d):\n", len(snap.Events))
			for _, e := range snap.Events {
				fmt.Printf("  %-12s %s\n", e.Type, e.Detail)
			}
		}
	}

	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
