package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	"iof-app/internal/appconfig"
	"iof-app/internal/buildinfo"
	"iof-app/internal/clock"
	"iof-app/internal/commands"
	"iof-app/internal/env"
	"iof-app/internal/frameloop"
	"iof-app/internal/logger"
	"iof-app/internal/stats"
)

type runFlags struct {
	config   string
	env      string
	headless bool
	frames   uint64
	pacing   string
	fps      int
}

// newRunFlagSet declares the run flags into f. Flag defaults follow appconfig.Default.
func newRunFlagSet(f *runFlags) *flag.FlagSet {
	def := appconfig.Default()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", appconfig.DefaultPath, "Config file (.yaml, .yml or .json).")
	fs.StringVar(&f.env, "env", env.DefaultPath, "Dotenv file read before IOF_* overrides.")
	fs.BoolVar(&f.headless, "headless", def.Backend == appconfig.BackendHeadless, "Run without a window.")
	fs.Uint64Var(&f.frames, "frames", def.MaxFrames, "Stop after N presented frames (0 = run until closed).")
	fs.StringVar(&f.pacing, "pacing", def.Pacing, "Frame pacing: busy (spin between frames) or sleep.")
	fs.IntVar(&f.fps, "fps", def.TargetFPS, "Target frames per second.")
	return fs
}

func registerRun(reg *commands.Registry) {
	var f runFlags
	fs := newRunFlagSet(&f)

	reg.Register("run", "open the window and run the frame loop (default)", fs, func([]string) error {
		cfg, err := loadConfig(fs, f)
		if err != nil {
			return err
		}
		return run(cfg)
	})
}

// loadConfig layers defaults, config file, .env, IOF_* variables and explicitly set flags.
func loadConfig(fs *flag.FlagSet, f runFlags) (appconfig.Config, error) {
	if _, err := env.Load(f.env); err != nil {
		return appconfig.Config{}, fmt.Errorf("load %s: %w", f.env, err)
	}
	cfg, err := appconfig.Load(f.config)
	if err != nil {
		return cfg, err
	}
	if err := appconfig.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "headless":
			if f.headless {
				cfg.Backend = appconfig.BackendHeadless
			} else {
				cfg.Backend = appconfig.BackendWindow
			}
		case "frames":
			cfg.MaxFrames = f.frames
		case "pacing":
			cfg.Pacing = f.pacing
		case "fps":
			cfg.TargetFPS = f.fps
		}
	})
	return cfg, cfg.Validate()
}

func run(cfg appconfig.Config) error {
	level, _ := cfg.Level()
	log, closeLog, err := logger.New(logger.Options{Level: level, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	log.Info("Starting",
		slog.String("version", buildinfo.Short()),
		slog.String("backend", cfg.Backend),
		slog.Int("width", cfg.Width),
		slog.Int("height", cfg.Height),
		slog.String("title", cfg.Title),
	)

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	deltas, closeDeltas, err := openDeltas(cfg.DeltaOutput)
	if err != nil {
		return fmt.Errorf("open delta output: %w", err)
	}
	defer closeDeltas()

	pacing, err := frameloop.ParsePacing(cfg.Pacing)
	if err != nil {
		return err
	}

	surface, err := openSurface(cfg)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	frames := stats.New(log)
	frames.ShowFPS = cfg.ShowFPS
	frames.ShowMemAlloc = cfg.ShowMemAlloc

	loop, err := frameloop.New(surface, clock.NewMonotonic(), frameloop.Options{
		TargetFPS: cfg.TargetFPS,
		Pacing:    pacing,
		MaxFrames: cfg.MaxFrames,
		Deltas:    deltas,
		Log:       log,
		Stats:     frames,
	})
	if err != nil {
		surface.Destroy()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil {
		log.Error("Frame loop failed", slog.Any("err", err))
		return err
	}
	return nil
}

func startProfile(mode string) interface{ Stop() } {
	opts := []func(*profile.Profile){profile.ProfilePath("profiles"), profile.NoShutdownHook}
	switch mode {
	case "cpu":
		return profile.Start(append(opts, profile.CPUProfile)...)
	case "mem":
		return profile.Start(append(opts, profile.MemProfile)...)
	case "trace":
		return profile.Start(append(opts, profile.TraceProfile)...)
	}
	return nil
}
