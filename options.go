package recorder

import "log/slog"

// Option configures a Recorder.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	monitor  Monitor
	maxBatch int
}

func defaultOptions() *options {
	return &options{
		logger:  slog.Default(),
		monitor: noopMonitor{},
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithMonitor installs hooks observing the worker.
func WithMonitor(monitor Monitor) Option {
	return func(o *options) {
		if monitor == nil {
			monitor = noopMonitor{}
		}
		o.monitor = monitor
	}
}

// WithMaxBatch caps how many records a single Save call on the storage receives.
// Records beyond the cap are flushed in the following call, in order.
// Zero or a negative value means no cap, which is the default.
func WithMaxBatch(n int) Option {
	return func(o *options) {
		o.maxBatch = max(n, 0)
	}
}
