package scheduler

import (
	"time"

	"github.com/kingrea/threadkeeper/internal/metrics"
	"github.com/kingrea/threadkeeper/internal/scoring"
)

// Logger receives progress lines. The logbook package satisfies it.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// Option customizes Scheduler construction for tests and hosts.
type Option func(*Scheduler)

// WithSettings replaces the default settings.
func WithSettings(settings scoring.Settings) Option {
	return func(s *Scheduler) {
		s.settings = settings
	}
}

// WithClock overrides the time source used for injection timestamps,
// freshness and latency measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger. Without one the scheduler stays silent.
func WithLogger(logger Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithRecorder mirrors each selection into OpenTelemetry instruments.
func WithRecorder(recorder *metrics.Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = recorder
	}
}

// WithHistoryLimit bounds how many selection entries are retained. Values
// <= 0 keep the default.
func WithHistoryLimit(limit int) Option {
	return func(s *Scheduler) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}
