package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/iofapp.txt"

const timeFormat = "2006-01-02 15:04:05"

// Options configure New. An empty File logs to Stderr only.
type Options struct {
	Level  slog.Leveler
	File   string
	Stderr io.Writer
}

// New returns a text logger writing to stderr and appending to the log file. Each entry
// is stamped with local computer time. The returned close func releases the file.
func New(opts Options) (*slog.Logger, func() error, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	closeFn := func() error { return nil }

	w := stderr
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(stderr, f)
		closeFn = f.Close
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: stampLocal,
	})
	return slog.New(h), closeFn, nil
}

func stampLocal(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(timeFormat))
	}
	return a
}
