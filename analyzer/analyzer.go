// Package analyzer computes summary statistics over a traffic dataset.
//
// Every query is read-only and never fails outright: on an empty dataset, an
// invalid argument, an overflowing sum or even a panic it returns the query's
// documented default together with the cause in Result.Err, and logs the cause.
package analyzer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/davidvella/traffic/dataset"
	"github.com/davidvella/traffic/monitoring"
	"github.com/davidvella/traffic/window"
)

const (
	// DefaultTopN is the number of busiest buckets reported.
	DefaultTopN = 3
	// DefaultWindowSize is the number of buckets in the quietest window (1.5 hours).
	DefaultWindowSize = 3
)

var (
	ErrNilDataset         = errors.New("nil dataset")
	ErrEmptyDataset       = errors.New("no data loaded")
	ErrInvalidN           = errors.New("n must be greater than 0")
	ErrInvalidWindowSize  = errors.New("window size must be greater than 0")
	ErrNoContiguousWindow = errors.New("no run of contiguous buckets is long enough")
	ErrOverflow           = errors.New("count sum overflows int64")
	ErrQueryPanic         = errors.New("query panicked")
)

// Result is the outcome of a query. Err is nil on success; otherwise Value
// holds the query's default and Err the cause.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the query succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// DayTotal is the number of cars counted on one calendar date.
type DayTotal struct {
	Date  string `json:"date"`
	Total int64  `json:"total_cars"`
}

// Window is a run of contiguous buckets and the cars counted across them.
type Window struct {
	Sum        int64       `json:"total_cars"`
	Timestamps []time.Time `json:"datetime_range"`
}

// Start returns the first bucket of the window.
func (w Window) Start() (time.Time, bool) {
	if len(w.Timestamps) == 0 {
		return time.Time{}, false
	}
	return w.Timestamps[0], true
}

// Gap is a stretch of missing buckets between two recorded ones.
type Gap struct {
	After   time.Time `json:"after"`
	Before  time.Time `json:"before"`
	Missing int       `json:"missing"`
}

type Analyzer struct {
	logger   *zap.Logger
	strategy *window.Strategy
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithStrategy sets how bucket adjacency is decided.
func WithStrategy(s *window.Strategy) Option {
	return func(a *Analyzer) {
		a.strategy = s
	}
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:   zap.NewNop(),
		strategy: window.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = monitoring.Component(a.logger, "analyzer")
	return a
}

// run executes fn, collapsing any error or panic to the default produced by def.
func run[T any](a *Analyzer, query string, def func() T, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = fail(a, query, def(), fmt.Errorf("%w: %v", ErrQueryPanic, r))
		}
	}()

	v, err := fn()
	if err != nil {
		return fail(a, query, def(), err)
	}
	return Result[T]{Value: v}
}

func fail[T any](a *Analyzer, query string, def T, err error) Result[T] {
	a.logger.Warn("query failed, returning default",
		monitoring.Event("query_failed"),
		zap.String("query", query),
		zap.Error(err),
	)
	return Result[T]{Value: def, Err: err}
}

func checkDataset(d *dataset.Dataset) error {
	if d == nil {
		return ErrNilDataset
	}
	if d.IsEmpty() {
		return ErrEmptyDataset
	}
	return nil
}

func add(sum, n int64) (int64, error) {
	if n > 0 && sum > math.MaxInt64-n {
		return 0, ErrOverflow
	}
	return sum + n, nil
}
