package traffic

import (
	"go.uber.org/zap"

	"github.com/davidvella/traffic/analyzer"
	"github.com/davidvella/traffic/loader"
)

// options defines all configuration options for the analyzer.
type options struct {
	logger  *zap.Logger
	storage loader.Storage

	topN       int // How many busiest half-hours to report
	windowSize int // How many contiguous half-hours make up the quietest window
}

// Option is a function that configures the analyzer options.
type Option func(*options)

// WithLogger sets the logger used for load warnings and query failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = orNop(logger)
	}
}

// WithStorage sets where log files are read from.
func WithStorage(s loader.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithTopN sets how many busiest half-hours are reported.
func WithTopN(n int) Option {
	return func(o *options) {
		o.topN = n
	}
}

// WithWindowSize sets the number of half-hours in the quietest window.
func WithWindowSize(k int) Option {
	return func(o *options) {
		o.windowSize = k
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		logger:     zap.NewNop(),
		topN:       analyzer.DefaultTopN,
		windowSize: analyzer.DefaultWindowSize,
	}
}
