// Package logging provides the leveled console logger shared by the RX and
// TX pipelines, built on the charmbracelet/log library.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger tagged with "pipeline"=name, at Info level by
// default.
func New(name string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat: "15:04:05.000",
	})
	l.SetLevel(log.InfoLevel)
	return l.With("pipeline", name)
}

// SetDebug toggles debug-level logging.
func SetDebug(l *log.Logger, debug bool) {
	if debug {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
}
