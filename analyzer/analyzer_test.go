package analyzer_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidvella/traffic/analyzer"
	"github.com/davidvella/traffic/dataset"
	"github.com/davidvella/traffic/record"
	"github.com/davidvella/traffic/recordio"
	"github.com/davidvella/traffic/window"
)

const sample = `2021-12-01T05:00:00 5
2021-12-01T05:30:00 12
2021-12-01T06:00:00 14
2021-12-01T06:30:00 15
2021-12-01T07:00:00 25
2021-12-01T07:30:00 46
2021-12-01T08:00:00 42
2021-12-01T15:00:00 9
2021-12-01T15:30:00 11
2021-12-01T23:30:00 0
2021-12-05T09:30:00 18
2021-12-05T10:30:00 15
2021-12-05T11:30:00 7
2021-12-05T12:30:00 6
2021-12-05T13:30:00 9
2021-12-05T14:30:00 11
2021-12-05T15:30:00 15
2021-12-08T18:00:00 33
2021-12-08T19:00:00 28
2021-12-08T20:00:00 25
2021-12-08T21:00:00 21
2021-12-08T22:00:00 16
2021-12-08T23:00:00 11
2021-12-09T00:00:00 4
`

func parse(t *testing.T, text string) []record.Record {
	t.Helper()
	records, skipped, err := recordio.ReadRecords(strings.NewReader(text))
	require.NoError(t, err)
	require.Empty(t, skipped)
	return records
}

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return dataset.New(parse(t, sample)...)
}

func at(day, hh, mm int) time.Time {
	return time.Date(2021, 12, day, hh, mm, 0, 0, time.UTC)
}

func rec(day, hh, mm int, count int64) record.Record {
	return record.Record{Timestamp: at(day, hh, mm), Count: count}
}

func observed() (*analyzer.Analyzer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return analyzer.New(analyzer.WithLogger(zap.New(core))), logs
}

func TestReferenceDataset(t *testing.T) {
	a := analyzer.New()
	d := sampleDataset(t)

	total := a.TotalCars(d)
	require.True(t, total.OK())
	assert.Equal(t, int64(398), total.Value)

	days := a.PerDayTotals(d)
	require.NoError(t, days.Err)
	assert.Equal(t, []analyzer.DayTotal{
		{Date: "2021-12-01", Total: 179},
		{Date: "2021-12-05", Total: 81},
		{Date: "2021-12-08", Total: 134},
		{Date: "2021-12-09", Total: 4},
	}, days.Value)

	top := a.TopHalfHours(d, analyzer.DefaultTopN)
	require.NoError(t, top.Err)
	assert.Equal(t, []record.Record{
		rec(1, 7, 30, 46),
		rec(1, 8, 0, 42),
		rec(8, 18, 0, 33),
	}, top.Value)

	least := a.LeastCarsWindow(d, analyzer.DefaultWindowSize)
	require.NoError(t, least.Err)
	assert.Equal(t, int64(31), least.Value.Sum)
	assert.Equal(t, []time.Time{at(1, 5, 0), at(1, 5, 30), at(1, 6, 0)}, least.Value.Timestamps)
	start, ok := least.Value.Start()
	assert.True(t, ok)
	assert.Equal(t, at(1, 5, 0), start)
}

func TestLeastCarsWindow_RespectsGaps(t *testing.T) {
	a := analyzer.New()
	d := dataset.New(
		rec(1, 5, 0, 10),
		rec(1, 5, 30, 9),
		rec(1, 6, 0, 12),
		rec(1, 7, 0, 5),
		rec(1, 7, 30, 1),
	)

	got := a.LeastCarsWindow(d, 3)

	require.NoError(t, got.Err)
	assert.Equal(t, analyzer.Window{
		Sum:        31,
		Timestamps: []time.Time{at(1, 5, 0), at(1, 5, 30), at(1, 6, 0)},
	}, got.Value)
}

func TestLeastCarsWindow(t *testing.T) {
	tests := []struct {
		name    string
		records []record.Record
		k       int
		want    analyzer.Window
		wantErr error
	}{
		{
			name:    "picks minimum among several",
			records: []record.Record{rec(1, 5, 0, 9), rec(1, 5, 30, 1), rec(1, 6, 0, 1), rec(1, 6, 30, 1), rec(1, 7, 0, 9)},
			k:       3,
			want:    analyzer.Window{Sum: 3, Timestamps: []time.Time{at(1, 5, 30), at(1, 6, 0), at(1, 6, 30)}},
		},
		{
			name:    "ties go to earliest start",
			records: []record.Record{rec(1, 5, 0, 2), rec(1, 5, 30, 2), rec(1, 6, 0, 2), rec(1, 6, 30, 2)},
			k:       2,
			want:    analyzer.Window{Sum: 4, Timestamps: []time.Time{at(1, 5, 0), at(1, 5, 30)}},
		},
		{
			name:    "window of one is the quietest bucket",
			records: []record.Record{rec(1, 5, 0, 7), rec(1, 9, 0, 3), rec(1, 12, 0, 3)},
			k:       1,
			want:    analyzer.Window{Sum: 3, Timestamps: []time.Time{at(1, 9, 0)}},
		},
		{
			name:    "out of order input is sorted first",
			records: []record.Record{rec(1, 6, 0, 1), rec(1, 5, 0, 1), rec(1, 5, 30, 1)},
			k:       3,
			want:    analyzer.Window{Sum: 3, Timestamps: []time.Time{at(1, 5, 0), at(1, 5, 30), at(1, 6, 0)}},
		},
		{
			name:    "window may cross midnight",
			records: []record.Record{rec(1, 23, 0, 1), rec(1, 23, 30, 0), rec(2, 0, 0, 1), rec(2, 0, 30, 8)},
			k:       3,
			want:    analyzer.Window{Sum: 2, Timestamps: []time.Time{at(1, 23, 0), at(1, 23, 30), at(2, 0, 0)}},
		},
		{
			name:    "duplicate timestamps break contiguity",
			records: []record.Record{rec(1, 5, 0, 1), rec(1, 5, 30, 1), rec(1, 5, 30, 1)},
			k:       3,
			want:    analyzer.Window{Timestamps: []time.Time{}},
			wantErr: analyzer.ErrNoContiguousWindow,
		},
		{
			name:    "hourly data has no half-hour run",
			records: []record.Record{rec(5, 9, 30, 18), rec(5, 10, 30, 15), rec(5, 11, 30, 7)},
			k:       2,
			want:    analyzer.Window{Timestamps: []time.Time{}},
			wantErr: analyzer.ErrNoContiguousWindow,
		},
		{
			name:    "fewer records than k",
			records: []record.Record{rec(1, 5, 0, 1), rec(1, 5, 30, 1)},
			k:       3,
			want:    analyzer.Window{Timestamps: []time.Time{}},
			wantErr: analyzer.ErrNoContiguousWindow,
		},
		{
			name:    "zero k",
			records: []record.Record{rec(1, 5, 0, 1)},
			k:       0,
			want:    analyzer.Window{Timestamps: []time.Time{}},
			wantErr: analyzer.ErrInvalidWindowSize,
		},
		{
			name:    "negative k",
			records: []record.Record{rec(1, 5, 0, 1)},
			k:       -2,
			want:    analyzer.Window{Timestamps: []time.Time{}},
			wantErr: analyzer.ErrInvalidWindowSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.New().LeastCarsWindow(dataset.New(tt.records...), tt.k)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got.Err, tt.wantErr)
			} else {
				assert.NoError(t, got.Err)
			}
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestLeastCarsWindow_AcrossSources(t *testing.T) {
	var b dataset.Builder
	b.Add("evening.logs", []record.Record{rec(1, 19, 0, 1), rec(1, 18, 0, 50)})
	b.Add("late.logs", []record.Record{rec(1, 18, 30, 2)})

	got := analyzer.New().LeastCarsWindow(b.Dataset(), 2)

	require.NoError(t, got.Err)
	assert.Equal(t, int64(3), got.Value.Sum)
	assert.Equal(t, []time.Time{at(1, 18, 30), at(1, 19, 0)}, got.Value.Timestamps)
}

func TestTopHalfHours(t *testing.T) {
	d := dataset.New(
		rec(1, 6, 0, 20),
		rec(1, 5, 0, 20),
		rec(1, 5, 30, 30),
		rec(1, 7, 0, 10),
	)

	tests := []struct {
		name    string
		n       int
		want    []record.Record
		wantErr error
	}{
		{
			name: "ties by ascending timestamp",
			n:    3,
			want: []record.Record{rec(1, 5, 30, 30), rec(1, 5, 0, 20), rec(1, 6, 0, 20)},
		},
		{
			name: "n larger than dataset",
			n:    10,
			want: []record.Record{rec(1, 5, 30, 30), rec(1, 5, 0, 20), rec(1, 6, 0, 20), rec(1, 7, 0, 10)},
		},
		{
			name: "single",
			n:    1,
			want: []record.Record{rec(1, 5, 30, 30)},
		},
		{
			name:    "zero n",
			n:       0,
			want:    []record.Record{},
			wantErr: analyzer.ErrInvalidN,
		},
		{
			name:    "negative n",
			n:       -1,
			want:    []record.Record{},
			wantErr: analyzer.ErrInvalidN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.New().TopHalfHours(d, tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got.Err, tt.wantErr)
			} else {
				assert.NoError(t, got.Err)
			}
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestTopHalfHours_Properties(t *testing.T) {
	a := analyzer.New()
	d := sampleDataset(t)

	for n := 1; n <= d.Len()+2; n++ {
		got := a.TopHalfHours(d, n).Value

		assert.LessOrEqual(t, len(got), n)
		assert.LessOrEqual(t, len(got), d.Len())
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Count, got[i].Count)
		}
	}
}

func TestTotalEqualsSumOfDays(t *testing.T) {
	a := analyzer.New()

	for name, d := range map[string]*dataset.Dataset{
		"sample":       sampleDataset(t),
		"single":       dataset.New(rec(1, 5, 0, 7)),
		"empty":        dataset.New(),
		"duplicates":   dataset.New(rec(1, 5, 0, 7), rec(1, 5, 0, 7)),
		"multiple day": dataset.New(rec(1, 23, 30, 1), rec(2, 0, 0, 2), rec(3, 12, 0, 3)),
	} {
		t.Run(name, func(t *testing.T) {
			var sum int64
			for _, day := range a.PerDayTotals(d).Value {
				sum += day.Total
			}
			assert.Equal(t, a.TotalCars(d).Value, sum)
		})
	}
}

func TestQueries_Idempotent(t *testing.T) {
	a := analyzer.New()
	d := sampleDataset(t)

	assert.Equal(t, a.TotalCars(d), a.TotalCars(d))
	assert.Equal(t, a.PerDayTotals(d), a.PerDayTotals(d))
	assert.Equal(t, a.TopHalfHours(d, 3), a.TopHalfHours(d, 3))
	assert.Equal(t, a.LeastCarsWindow(d, 3), a.LeastCarsWindow(d, 3))
	assert.Equal(t, a.Gaps(d), a.Gaps(d))
}

func TestQueries_EmptyDataset(t *testing.T) {
	a, logs := observed()

	for name, d := range map[string]*dataset.Dataset{
		"empty": dataset.New(),
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			total := a.TotalCars(d)
			assert.Error(t, total.Err)
			assert.Equal(t, int64(0), total.Value)

			days := a.PerDayTotals(d)
			assert.Error(t, days.Err)
			assert.Equal(t, []analyzer.DayTotal{}, days.Value)

			top := a.TopHalfHours(d, 3)
			assert.Error(t, top.Err)
			assert.Equal(t, []record.Record{}, top.Value)

			least := a.LeastCarsWindow(d, 3)
			assert.Error(t, least.Err)
			assert.Equal(t, analyzer.Window{Timestamps: []time.Time{}}, least.Value)
			_, ok := least.Value.Start()
			assert.False(t, ok)

			gaps := a.Gaps(d)
			assert.Error(t, gaps.Err)
			assert.Equal(t, []analyzer.Gap{}, gaps.Value)
		})
	}

	failures := logs.FilterMessage("query failed, returning default").All()
	require.Len(t, failures, 10)
	queries := map[string]int{}
	for _, f := range failures {
		assert.Equal(t, zapcore.WarnLevel, f.Level)
		queries[f.ContextMap()["query"].(string)]++
	}
	assert.Equal(t, map[string]int{
		"total_cars":        2,
		"per_day_totals":    2,
		"top_n_half_hours":  2,
		"least_cars_window": 2,
		"gaps":              2,
	}, queries)

	assert.ErrorIs(t, a.TotalCars(dataset.New()).Err, analyzer.ErrEmptyDataset)
	assert.ErrorIs(t, a.TotalCars(nil).Err, analyzer.ErrNilDataset)
}

func TestQueries_Overflow(t *testing.T) {
	a := analyzer.New()
	d := dataset.New(rec(1, 5, 0, math.MaxInt64), rec(1, 5, 30, 1))

	total := a.TotalCars(d)
	assert.ErrorIs(t, total.Err, analyzer.ErrOverflow)
	assert.Equal(t, int64(0), total.Value)

	days := a.PerDayTotals(d)
	assert.ErrorIs(t, days.Err, analyzer.ErrOverflow)
	assert.Empty(t, days.Value)

	least := a.LeastCarsWindow(d, 2)
	assert.ErrorIs(t, least.Err, analyzer.ErrOverflow)
	assert.Equal(t, int64(0), least.Value.Sum)

	top := a.TopHalfHours(d, 1)
	require.NoError(t, top.Err)
	assert.Equal(t, int64(math.MaxInt64), top.Value[0].Count)
}

func TestQueries_RecoverPanics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := analyzer.New(analyzer.WithLogger(zap.New(core)), analyzer.WithStrategy(nil))
	d := dataset.New(rec(1, 5, 0, 1), rec(1, 5, 30, 1))

	var got analyzer.Result[analyzer.Window]
	assert.NotPanics(t, func() {
		got = a.LeastCarsWindow(d, 2)
	})

	assert.ErrorIs(t, got.Err, analyzer.ErrQueryPanic)
	assert.Equal(t, analyzer.Window{Timestamps: []time.Time{}}, got.Value)
	assert.Equal(t, 1, logs.FilterField(zap.String("query", "least_cars_window")).Len())
}

func TestGaps(t *testing.T) {
	a := analyzer.New(analyzer.WithStrategy(window.Default()))
	d := dataset.New(
		rec(1, 5, 0, 1),
		rec(1, 5, 30, 1),
		rec(1, 5, 30, 1),
		rec(1, 7, 0, 1),
		rec(1, 9, 0, 1),
	)

	got := a.Gaps(d)

	require.NoError(t, got.Err)
	assert.Equal(t, []analyzer.Gap{
		{After: at(1, 5, 30), Before: at(1, 7, 0), Missing: 2},
		{After: at(1, 7, 0), Before: at(1, 9, 0), Missing: 3},
	}, got.Value)
}
