package appconfig

import (
	"fmt"
	"strconv"
)

// EnvPrefix prefixes every environment override, e.g. IOF_TARGET_FPS.
const EnvPrefix = "IOF_"

// ApplyEnv overrides fields from environment variables found through lookup (usually
// os.LookupEnv). Empty values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"WIDTH", &cfg.Width},
		{"HEIGHT", &cfg.Height},
		{"TARGET_FPS", &cfg.TargetFPS},
	}
	for _, f := range ints {
		if v, ok := get(f.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, f.name, v)
			}
			*f.dst = n
		}
	}
	strs := []struct {
		name string
		dst  *string
	}{
		{"TITLE", &cfg.Title},
		{"PACING", &cfg.Pacing},
		{"BACKEND", &cfg.Backend},
		{"DELTA_OUTPUT", &cfg.DeltaOutput},
		{"LOG_LEVEL", &cfg.LogLevel},
		{"LOG_FILE", &cfg.LogFile},
		{"PROFILE", &cfg.Profile},
	}
	for _, f := range strs {
		if v, ok := get(f.name); ok {
			*f.dst = v
		}
	}
	bools := []struct {
		name string
		dst  *bool
	}{
		{"SHOW_FPS", &cfg.ShowFPS},
		{"SHOW_MEMALLOC", &cfg.ShowMemAlloc},
	}
	for _, f := range bools {
		if v, ok := get(f.name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, f.name, v)
			}
			*f.dst = b
		}
	}
	if v, ok := get("MAX_FRAMES"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_FRAMES=%q", ErrInvalid, EnvPrefix, v)
		}
		cfg.MaxFrames = n
	}
	return nil
}
