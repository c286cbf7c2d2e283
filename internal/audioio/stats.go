package audioio

import (
	"time"

	"github.com/charmbracelet/log"
)

// StatsReporter periodically logs the observed sample rate and error count
// for one stream (a Debug "audio stream stats" line with khz and errors
// fields, once per interval) through this module's structured logger.
type StatsReporter struct {
	logger *log.Logger
	interval time.Duration
	label string

	lastTime time.Time
	sampleCount int
	errorCount int
	suppressOnce bool
}

// NewStatsReporter returns a reporter that logs at most once per interval.
// An interval <= 0 disables reporting entirely.
func NewStatsReporter(logger *log.Logger, label string, interval time.Duration) *StatsReporter {
	return &StatsReporter{logger: logger, label: label, interval: interval}
}

// Observe records nsamp samples read/written this iteration (0 meaning a
// read/write error occurred) and logs a summary if interval has elapsed.
func (r *StatsReporter) Observe(nsamp int) {
	if r.interval <= 0 {
		return
	}

	now := time.Now()
	if r.lastTime.IsZero() {
		r.lastTime = now.Add(-(r.interval - 3*time.Second))
		r.suppressOnce = true
		return
	}

	if nsamp > 0 {
		r.sampleCount += nsamp
	} else {
		r.errorCount++
	}

	if now.Before(r.lastTime.Add(r.interval)) {
		return
	}

	if r.suppressOnce {
		// The first interval is rarely aligned to a clean boundary; skip it
		// to avoid reporting a misleadingly off rate.
		r.suppressOnce = false
	} else {
		avgRate := float64(r.sampleCount) / r.interval.Seconds() / 1000.0
		r.logger.Debug("audio stream stats", "stream", r.label, "khz", avgRate, "errors", r.errorCount)
	}

	r.lastTime = now
	r.sampleCount = 0
	r.errorCount = 0
}
