// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

// ForCLI returns a console logger on stderr. Quiet unless verbose.
func ForCLI(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ForTUI returns a logger that stays off the terminal: the alternate
// screen belongs to the UI, so output goes to a state-dir file when
// verbose, and nowhere otherwise. The returned closer is non-nil when a
// file was opened.
func ForTUI(verbose bool) (zerolog.Logger, io.Closer) {
	if !verbose {
		return zerolog.Nop(), nil
	}
	path := filepath.Join(xdg.StateHome, "sonarlens", "debug.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil
	}
	return zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger(), f
}
