package record

import (
	"time"
)

// Interval is the width of one traffic bucket.
const Interval = 30 * time.Minute

// Record is the vehicle count observed in the half-hour bucket starting at Timestamp.
type Record struct {
	Timestamp time.Time
	Count     int64
}

// Less orders records by timestamp only.
func (r Record) Less(o Record) bool {
	return r.Timestamp.Before(o.Timestamp)
}

// End returns the instant the bucket closes.
func (r Record) End() time.Time {
	return r.Timestamp.Add(Interval)
}

// Compare returns -1, 0 or +1 depending on the timestamps of a and b.
func Compare(a, b Record) int {
	return a.Timestamp.Compare(b.Timestamp)
}

// Contiguous reports whether b starts exactly one bucket after a.
func Contiguous(a, b Record) bool {
	return b.Timestamp.Sub(a.Timestamp) == Interval
}

// Aligned reports whether t falls on a bucket boundary (:00 or :30, zero seconds).
func Aligned(t time.Time) bool {
	return t.Nanosecond() == 0 && t.Second() == 0 && t.Minute()%30 == 0
}

// Day returns the calendar date of the record as YYYY-MM-DD.
func (r Record) Day() string {
	return r.Timestamp.Format(time.DateOnly)
}
