package recordio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/davidvella/traffic/record"
)

// TimestampLayout is the canonical layout used when writing records.
const TimestampLayout = "2006-01-02T15:04:05"

// MaxLineSize bounds a single row. Longer rows fail the whole read.
const MaxLineSize = 1 << 20

var (
	ErrMissingField     = errors.New("row needs a timestamp and a count")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrMisaligned       = errors.New("timestamp is not on a half-hour boundary")
	ErrInvalidCount     = errors.New("invalid count")
	ErrNegativeCount    = errors.New("negative count")
	// ErrHeader marks a leading row that names columns rather than holding data.
	ErrHeader = errors.New("header row")
)

// Accepted timestamp layouts, most common first.
var layouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

const byteOrderMark = "\uFEFF"

// RowError describes a row that could not be turned into a record.
type RowError struct {
	Line int
	Raw  string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Raw, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}

// ParseRecord parses one row of the form "<timestamp><sep><count>".
// The separator may be a comma, a semicolon or any run of whitespace.
func ParseRecord(line string) (record.Record, error) {
	fields := strings.FieldsFunc(line, isSeparator)
	if len(fields) < 2 {
		return record.Record{}, ErrMissingField
	}

	// The timestamp may itself contain a space ("2021-12-01 05:00").
	last := len(fields) - 1
	ts, err := parseTimestamp(strings.Join(fields[:last], " "))
	if err != nil {
		return record.Record{}, err
	}

	count, err := strconv.ParseInt(fields[last], 10, 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("%w %q", ErrInvalidCount, fields[last])
	}
	if count < 0 {
		return record.Record{}, fmt.Errorf("%w %d", ErrNegativeCount, count)
	}

	return record.Record{Timestamp: ts, Count: count}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range layouts {
		if len(s) != len(layout) {
			continue
		}
		ts, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if !record.Aligned(ts) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrMisaligned, s)
		}
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidTimestamp, s)
}

// looksLikeHeader reports whether the first field of a row is plainly not a date.
func looksLikeHeader(line string) bool {
	fields := strings.FieldsFunc(line, isSeparator)
	if len(fields) == 0 {
		return false
	}
	first := []rune(fields[0])
	return !unicode.IsDigit(first[0])
}

// Write writes a single record as one canonical row.
func Write(w io.Writer, r record.Record) (int64, error) {
	n, err := fmt.Fprintf(w, "%s %d\n", r.Timestamp.Format(TimestampLayout), r.Count)
	if err != nil {
		return int64(n), fmt.Errorf("error writing record: %w", err)
	}
	return int64(n), nil
}

// Seq creates an iterator over the rows of r.
//
// Rows that cannot be parsed are yielded with a *RowError and the scan carries
// on. Any other error is a read failure and ends the sequence. Blank lines and
// lines starting with '#' are ignored.
func Seq(r io.Reader) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

		line := 0
		seenData := false
		for scanner.Scan() {
			line++
			raw := scanner.Text()
			if line == 1 {
				raw = strings.TrimPrefix(raw, byteOrderMark)
			}
			text := strings.TrimSpace(raw)
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}

			rec, err := ParseRecord(text)
			if err != nil {
				if !seenData && looksLikeHeader(text) {
					err = ErrHeader
				}
				seenData = true
				if !yield(record.Record{}, &RowError{Line: line, Raw: raw, Err: err}) {
					return
				}
				continue
			}

			seenData = true
			if !yield(rec, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(record.Record{}, fmt.Errorf("error reading line %d: %w", line+1, err))
		}
	}
}

// ReadRecords reads every valid record of r, in file order.
// Row errors are collected and returned alongside; a read failure stops the read.
func ReadRecords(r io.Reader) ([]record.Record, []*RowError, error) {
	var (
		records = make([]record.Record, 0, 16)
		skipped []*RowError
	)
	for rec, err := range Seq(r) {
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				skipped = append(skipped, rowErr)
				continue
			}
			return records, skipped, err
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
