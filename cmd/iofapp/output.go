package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"iof-app/internal/appconfig"
	"iof-app/internal/graphics"
	"iof-app/internal/window"
)

// openDeltas returns the writer for per-iteration deltas. Writers are buffered; the
// frame loop flushes them on every presented frame.
func openDeltas(dst string) (io.Writer, func() error, error) {
	switch dst {
	case "stdout":
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	case "discard":
		return io.Discard, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}

func openSurface(cfg appconfig.Config) (window.Surface, error) {
	if cfg.Backend == appconfig.BackendHeadless {
		return window.NewHeadless(cfg.Width, cfg.Height), nil
	}
	win, err := graphics.Open(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return nil, err
	}
	return win, nil
}
