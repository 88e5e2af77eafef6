package analyzer

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/btree"

	"github.com/davidvella/traffic/dataset"
	"github.com/davidvella/traffic/priority"
	"github.com/davidvella/traffic/record"
)

// TotalCars returns the sum of all counts. Default 0.
func (a *Analyzer) TotalCars(d *dataset.Dataset) Result[int64] {
	return run(a, "total_cars", zero[int64], func() (int64, error) {
		if err := checkDataset(d); err != nil {
			return 0, err
		}

		var (
			sum int64
			err error
		)
		for r := range d.All() {
			if sum, err = add(sum, r.Count); err != nil {
				return 0, err
			}
		}
		return sum, nil
	})
}

// PerDayTotals returns the sum of counts for each calendar date, ascending by
// date. Default empty.
func (a *Analyzer) PerDayTotals(d *dataset.Dataset) Result[[]DayTotal] {
	return run(a, "per_day_totals", empty[DayTotal], func() ([]DayTotal, error) {
		if err := checkDataset(d); err != nil {
			return nil, err
		}

		days := btree.NewG[DayTotal](8, func(x, y DayTotal) bool { return x.Date < y.Date })
		for r := range d.All() {
			day, _ := days.Get(DayTotal{Date: r.Day()})
			total, err := add(day.Total, r.Count)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.Day(), err)
			}
			days.ReplaceOrInsert(DayTotal{Date: r.Day(), Total: total})
		}

		out := make([]DayTotal, 0, days.Len())
		days.Ascend(func(item DayTotal) bool {
			out = append(out, item)
			return true
		})
		return out, nil
	})
}

type ranked struct {
	record.Record
	seq int
}

// worse orders the record least deserving of a top spot first: lower count,
// then later timestamp, then later position.
func worse(x, y ranked) bool {
	if x.Count != y.Count {
		return x.Count < y.Count
	}
	if c := x.Timestamp.Compare(y.Timestamp); c != 0 {
		return c > 0
	}
	return x.seq > y.seq
}

// TopHalfHours returns the n records with the greatest counts, descending by
// count with ties broken by ascending timestamp. Default empty.
func (a *Analyzer) TopHalfHours(d *dataset.Dataset, n int) Result[[]record.Record] {
	return run(a, "top_n_half_hours", empty[record.Record], func() ([]record.Record, error) {
		if n <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidN, n)
		}
		if err := checkDataset(d); err != nil {
			return nil, err
		}

		// The root holds the worst record kept so far.
		kept := priority.NewQueue[int, ranked](worse)
		seq := 0
		for r := range d.All() {
			kept.Set(seq, ranked{Record: r, seq: seq})
			seq++
			if kept.Len() > n {
				kept.Pop()
			}
		}

		drained := kept.Drain()
		out := make([]record.Record, 0, len(drained))
		for i := len(drained) - 1; i >= 0; i-- {
			out = append(out, drained[i].Record)
		}
		return out, nil
	})
}

// LeastCarsWindow returns the run of k contiguous buckets with the smallest
// total, preferring the earliest on ties. A window never spans a gap: every
// pair of neighbours inside it must be exactly one interval apart. Default is
// a zero sum with no timestamps.
func (a *Analyzer) LeastCarsWindow(d *dataset.Dataset, k int) Result[Window] {
	return run(a, "least_cars_window", emptyWindow, func() (Window, error) {
		if k <= 0 {
			return Window{}, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, k)
		}
		if err := checkDataset(d); err != nil {
			return Window{}, err
		}
		if d.Len() < k {
			return Window{}, fmt.Errorf("%w: %d records, window of %d", ErrNoContiguousWindow, d.Len(), k)
		}

		var (
			ring    = make([]record.Record, k)
			idx     int   // records seen
			length  int   // length of the current contiguous run
			sum     int64 // sum of the last min(length, k) counts
			prev    time.Time
			found   bool
			best    Window
			longest int
		)
		for r := range d.All() {
			if length > 0 && !a.strategy.Contiguous(prev, r.Timestamp) {
				length, sum = 0, 0
			}
			if length >= k {
				sum -= ring[idx%k].Count
			}

			var err error
			if sum, err = add(sum, r.Count); err != nil {
				return Window{}, err
			}
			ring[idx%k] = r
			idx++
			length++
			longest = max(longest, length)
			prev = r.Timestamp

			if length >= k && (!found || sum < best.Sum) {
				found = true
				best.Sum = sum
				best.Timestamps = make([]time.Time, k)
				for j := range k {
					best.Timestamps[j] = ring[(idx-k+j)%k].Timestamp
				}
			}
		}

		if !found {
			return Window{}, fmt.Errorf("%w: longest run is %d, window of %d", ErrNoContiguousWindow, longest, k)
		}
		return best, nil
	})
}

// Gaps lists every stretch of missing buckets in the dataset, in time order.
// Default empty.
func (a *Analyzer) Gaps(d *dataset.Dataset) Result[[]Gap] {
	return run(a, "gaps", empty[Gap], func() ([]Gap, error) {
		if err := checkDataset(d); err != nil {
			return nil, err
		}

		out := make([]Gap, 0)
		first := true
		var prev time.Time
		for r := range d.All() {
			if !first {
				if missing := a.strategy.Missing(prev, r.Timestamp); missing > 0 {
					out = append(out, Gap{After: prev, Before: r.Timestamp, Missing: missing})
				}
			}
			first = false
			prev = r.Timestamp
		}
		return slices.Clip(out), nil
	})
}

func zero[T any]() T {
	var v T
	return v
}

func empty[T any]() []T {
	return []T{}
}

func emptyWindow() Window {
	return Window{Timestamps: []time.Time{}}
}
