package utils

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a charmbracelet logger writing to w (stderr when nil),
// with timestamps enabled and the given level ("debug", "info", ...).
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetReportCaller(lvl == log.DebugLevel)
	return l
}

// InstallDefault routes log/slog through l.
func InstallDefault(l *log.Logger) {
	slog.SetDefault(slog.New(l))
}
