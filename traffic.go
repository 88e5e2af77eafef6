// Package traffic summarises half-hour traffic-count logs: the total number of
// cars, per-day totals, the busiest half-hours and the quietest stretch of
// contiguous half-hours.
//
// The Analyzer type ties loading and querying together:
//
//	a := traffic.NewAnalyzer(traffic.WithLogger(logger))
//	a.AddPaths(ctx, "./traffic_logs/traffic.logs")
//	s := a.Summarize()
//	fmt.Println(s.Total, s.Least.Sum)
//
// The loader and analyzer packages can also be used on their own.
package traffic

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/davidvella/traffic/analyzer"
	"github.com/davidvella/traffic/dataset"
	"github.com/davidvella/traffic/loader"
	"github.com/davidvella/traffic/monitoring"
	"github.com/davidvella/traffic/record"
)

// Summary is every statistic computed over the same dataset snapshot.
type Summary struct {
	Paths  []string
	Total  int64
	PerDay []analyzer.DayTotal
	Top    []record.Record
	Least  analyzer.Window
	Gaps   []analyzer.Gap
	Stats  monitoring.LoadStats
}

// Analyzer loads log files and answers queries about them.
type Analyzer struct {
	loader   *loader.Loader
	analyzer *analyzer.Analyzer
	paths    []string
	topN     int
	window   int
}

// NewAnalyzer creates an analyzer with no data loaded.
func NewAnalyzer(opts ...Option) *Analyzer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	loaderOpts := []loader.Option{loader.WithLogger(o.logger)}
	if o.storage != nil {
		loaderOpts = append(loaderOpts, loader.WithStorage(o.storage))
	}

	return &Analyzer{
		loader:   loader.New(loaderOpts...),
		analyzer: analyzer.New(analyzer.WithLogger(o.logger)),
		topN:     o.topN,
		window:   o.windowSize,
	}
}

// AddPaths loads more files. Files that cannot be read are logged and skipped.
func (a *Analyzer) AddPaths(ctx context.Context, paths ...string) {
	a.paths = append(a.paths, paths...)
	a.loader.Add(ctx, paths...)
}

// Dataset returns a snapshot of everything loaded so far.
func (a *Analyzer) Dataset() *dataset.Dataset {
	return a.loader.Dataset()
}

// Total returns the number of cars seen, or 0.
func (a *Analyzer) Total() int64 {
	return a.analyzer.TotalCars(a.Dataset()).Value
}

// PerDay returns per-day totals in date order.
func (a *Analyzer) PerDay() []analyzer.DayTotal {
	return a.analyzer.PerDayTotals(a.Dataset()).Value
}

// TopHalfHours returns the busiest half-hours, busiest first.
func (a *Analyzer) TopHalfHours() []record.Record {
	return a.analyzer.TopHalfHours(a.Dataset(), a.topN).Value
}

// LeastWindow returns the contiguous window with the fewest cars.
func (a *Analyzer) LeastWindow() analyzer.Window {
	return a.analyzer.LeastCarsWindow(a.Dataset(), a.window).Value
}

// Summarize computes every statistic over one snapshot.
func (a *Analyzer) Summarize() Summary {
	d := a.Dataset()
	return Summary{
		Paths:  slices.Clone(a.paths),
		Total:  a.analyzer.TotalCars(d).Value,
		PerDay: a.analyzer.PerDayTotals(d).Value,
		Top:    a.analyzer.TopHalfHours(d, a.topN).Value,
		Least:  a.analyzer.LeastCarsWindow(d, a.window).Value,
		Gaps:   a.analyzer.Gaps(d).Value,
		Stats:  a.loader.Stats(),
	}
}

// orNop substitutes a no-op logger for nil.
func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
