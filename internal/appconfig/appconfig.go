package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"iof-app/internal/logger"
)

// DefaultPath is the config file read by "iofapp run", relative to the working directory.
const DefaultPath = "config/app.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Backends accepted in Config.Backend.
const (
	BackendWindow   = "window"
	BackendHeadless = "headless"
)

// Config holds everything that used to be compiled in. Zero values in a config file
// leave the default in place.
type Config struct {
	Width     int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int    `json:"height,omitempty" yaml:"height,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	TargetFPS int    `json:"target_fps,omitempty" yaml:"target_fps,omitempty"`
	// Pacing is "busy" (spin, the original behavior) or "sleep" (wait for the next frame boundary).
	Pacing  string `json:"pacing,omitempty" yaml:"pacing,omitempty"`
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// MaxFrames stops after that many presented frames; 0 runs until the window closes.
	MaxFrames uint64 `json:"max_frames,omitempty" yaml:"max_frames,omitempty"`
	// DeltaOutput is "stdout", "discard", or a file path.
	DeltaOutput  string `json:"delta_output,omitempty" yaml:"delta_output,omitempty"`
	LogLevel     string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFile      string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	ShowFPS      bool   `json:"show_fps,omitempty" yaml:"show_fps,omitempty"`
	ShowMemAlloc bool   `json:"show_memalloc,omitempty" yaml:"show_memalloc,omitempty"`
	// Profile is "", "cpu", "mem" or "trace".
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// Default returns the original program's settings: a 200x400 "IOF App" window at 60 FPS,
// deltas on stdout.
func Default() Config {
	return Config{
		Width:       200,
		Height:      400,
		Title:       "IOF App",
		TargetFPS:   60,
		Pacing:      "busy",
		Backend:     BackendWindow,
		DeltaOutput: "stdout",
		LogLevel:    "info",
		LogFile:     logger.LogFilePath,
	}
}

// Load reads path (.yaml, .yml or .json) over Default(). A missing file is not an error.
// On a decode error the defaults are returned along with the error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := unmarshal(path, data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := copier.CopyWithOption(&cfg, &file, copier.Option{IgnoreEmpty: true}); err != nil {
		return Default(), fmt.Errorf("merge config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed. The format follows the extension.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := marshal(path, cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	}
	return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

func marshal(path string, cfg Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.MarshalIndent(cfg, "", "\t")
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	}
	return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height))
	}
	if c.TargetFPS < 1 || c.TargetFPS > 1000 {
		errs = append(errs, fmt.Errorf("%w: target_fps %d not in [1, 1000]", ErrInvalid, c.TargetFPS))
	}
	if c.Pacing != "sleep" && c.Pacing != "busy" {
		errs = append(errs, fmt.Errorf("%w: pacing %q", ErrInvalid, c.Pacing))
	}
	if c.Backend != BackendWindow && c.Backend != BackendHeadless {
		errs = append(errs, fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend))
	}
	switch c.Profile {
	case "", "cpu", "mem", "trace":
	default:
		errs = append(errs, fmt.Errorf("%w: profile %q", ErrInvalid, c.Profile))
	}
	if c.DeltaOutput == "" {
		errs = append(errs, fmt.Errorf("%w: empty delta_output", ErrInvalid))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}
