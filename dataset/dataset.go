// Package dataset holds loaded traffic records as an immutable, time-ordered snapshot.
//
// Each source contributes one segment, sorted by timestamp when it is added.
// Iteration merges the segments with a stable loser tree: records with equal
// timestamps come out in source order, then in their original row order.
package dataset

import (
	"iter"
	"slices"

	"github.com/davidvella/traffic/loser"
	"github.com/davidvella/traffic/record"
)

type segment struct {
	source  string
	records []record.Record
}

func (s segment) All() iter.Seq[record.Record] {
	return slices.Values(s.records)
}

// Dataset is a read-only union of sources. The zero value is an empty dataset.
type Dataset struct {
	segments []segment
	size     int
}

// Builder accumulates sources. Snapshots taken from it are never affected by
// later additions.
type Builder struct {
	segments []segment
	size     int
}

// Add sorts a copy of records by timestamp and appends it as a new segment.
func (b *Builder) Add(source string, records []record.Record) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, record.Compare)
	b.segments = append(b.segments, segment{source: source, records: sorted})
	b.size += len(sorted)
}

// Dataset returns a snapshot of everything added so far.
func (b *Builder) Dataset() *Dataset {
	return &Dataset{
		segments: slices.Clip(slices.Clone(b.segments)),
		size:     b.size,
	}
}

// New builds a dataset with a single unnamed source.
func New(records ...record.Record) *Dataset {
	var b Builder
	b.Add("", records)
	return b.Dataset()
}

// Len returns the number of records across all sources.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return d.size
}

// IsEmpty reports whether the dataset holds no records.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Sources lists the sources in the order they were added.
func (d *Dataset) Sources() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.segments))
	for _, s := range d.segments {
		out = append(out, s.source)
	}
	return out
}

// All yields every record in ascending timestamp order.
func (d *Dataset) All() iter.Seq[record.Record] {
	if d == nil {
		return func(func(record.Record) bool) {}
	}
	switch len(d.segments) {
	case 0:
		return func(func(record.Record) bool) {}
	case 1:
		return d.segments[0].All()
	}

	return func(yield func(record.Record) bool) {
		seqs := make([]loser.Sequence[record.Record], 0, len(d.segments))
		for _, s := range d.segments {
			seqs = append(seqs, s)
		}
		for r := range loser.New(seqs, record.Record.Less).All() {
			if !yield(r) {
				return
			}
		}
	}
}

// Records returns the merged records as a new slice.
func (d *Dataset) Records() []record.Record {
	out := make([]record.Record, 0, d.Len())
	for r := range d.All() {
		out = append(out, r)
	}
	return out
}
