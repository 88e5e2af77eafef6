// Package loader reads traffic log files into a dataset.
//
// Loading never fails: unreadable files contribute nothing and malformed rows
// are skipped. Every such condition is logged at warn level with the file path
// and, for rows, the line number and raw text.
package loader

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/davidvella/traffic/dataset"
	"github.com/davidvella/traffic/monitoring"
	"github.com/davidvella/traffic/record"
	"github.com/davidvella/traffic/recordio"
	"github.com/davidvella/traffic/storage/local"
)

// Storage defines where log files come from.
type Storage interface {
	// List expands a path into the files it names
	List(ctx context.Context, path string) ([]string, error)
	// Open a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Loader accumulates sources into a dataset. Paths may be added incrementally;
// earlier sources are never re-read.
type Loader struct {
	storage Storage
	logger  *zap.Logger
	stats   *monitoring.Stats
	builder dataset.Builder
}

// Option configures a Loader.
type Option func(*Loader)

// WithStorage sets the file source. Defaults to the local filesystem.
func WithStorage(s Storage) Option {
	return func(l *Loader) {
		l.storage = s
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithStats sets the collector load statistics are recorded in.
func WithStats(s *monitoring.Stats) Option {
	return func(l *Loader) {
		l.stats = s
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		storage: local.NewLocalStorage(""),
		logger:  zap.NewNop(),
		stats:   monitoring.NewStats(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = monitoring.Component(l.logger, "loader")
	return l
}

// Load reads paths into a new dataset.
func Load(ctx context.Context, paths []string, opts ...Option) *dataset.Dataset {
	l := New(opts...)
	l.Add(ctx, paths...)
	return l.Dataset()
}

// Add reads each path and unions its records into the loader's dataset.
// A path naming a directory adds every regular file in it.
func (l *Loader) Add(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			l.logger.Warn("load cancelled", monitoring.Event("load_cancelled"), zap.String("path", p), zap.Error(err))
			return
		}

		files, err := l.storage.List(ctx, p)
		if err != nil {
			l.stats.RecordFileFailed()
			l.logger.Warn("skipping path", monitoring.Event("file_failed"), zap.String("path", p), zap.Error(err))
			continue
		}
		if len(files) == 0 {
			l.logger.Warn("path holds no files", monitoring.Event("path_empty"), zap.String("path", p))
			continue
		}

		for _, f := range files {
			l.addFile(ctx, f)
		}
	}
}

func (l *Loader) addFile(ctx context.Context, path string) {
	rc, err := l.storage.Open(ctx, path)
	if err != nil {
		l.stats.RecordFileFailed()
		l.logger.Warn("skipping file", monitoring.Event("file_failed"), zap.String("path", path), zap.Error(err))
		return
	}
	defer rc.Close()

	records, err := l.readRecords(path, rc)
	if err != nil {
		l.stats.RecordFileFailed()
		l.logger.Warn("discarding unreadable file",
			monitoring.Event("file_failed"),
			zap.String("path", path),
			zap.Int("rows_read", len(records)),
			zap.Error(err),
		)
		return
	}

	l.builder.Add(path, records)
	l.stats.RecordFileLoaded(len(records))
	l.logger.Debug("file loaded", monitoring.Event("file_loaded"), zap.String("path", path), zap.Int("rows", len(records)))
}

func (l *Loader) readRecords(path string, r io.Reader) ([]record.Record, error) {
	var records []record.Record
	for rec, err := range recordio.Seq(r) {
		if err == nil {
			records = append(records, rec)
			continue
		}

		var rowErr *recordio.RowError
		if !errors.As(err, &rowErr) {
			return records, err
		}

		reason := skipReason(rowErr.Err)
		l.stats.RecordRowSkipped(reason)
		fields := []zap.Field{
			zap.String("path", path),
			zap.Int("line", rowErr.Line),
			zap.String("row", rowErr.Raw),
			zap.String("reason", reason),
		}
		if errors.Is(rowErr, recordio.ErrHeader) {
			l.logger.Debug("skipping header row", append(fields, monitoring.Event("header_skipped"))...)
			continue
		}
		l.logger.Warn("skipping malformed row", append(fields, monitoring.Event("row_skipped"), zap.Error(rowErr.Err))...)
	}
	return records, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, recordio.ErrHeader):
		return "header"
	case errors.Is(err, recordio.ErrMissingField):
		return "missing_field"
	case errors.Is(err, recordio.ErrMisaligned):
		return "misaligned"
	case errors.Is(err, recordio.ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, recordio.ErrNegativeCount):
		return "negative_count"
	case errors.Is(err, recordio.ErrInvalidCount):
		return "invalid_count"
	default:
		return "unknown"
	}
}

// Dataset returns a snapshot of everything loaded so far.
func (l *Loader) Dataset() *dataset.Dataset {
	return l.builder.Dataset()
}

// Stats returns the load statistics so far.
func (l *Loader) Stats() monitoring.LoadStats {
	return l.stats.Snapshot()
}
