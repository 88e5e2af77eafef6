// Package recordio reads and writes traffic-count rows. A row holds the start
// of a half-hour bucket and the number of vehicles counted in it:
//
//	2021-12-01T05:00:00 5
//	2021-12-01 05:30,12
//
// Timestamps may use a 'T' or a space between date and time, with or without
// seconds, and must sit on a :00 or :30 boundary. The count must be a
// non-negative integer. Fields may be separated by commas, semicolons or
// whitespace.
//
// Basic usage:
//
//	for rec, err := range recordio.Seq(f) {
//	    var rowErr *recordio.RowError
//	    if errors.As(err, &rowErr) {
//	        continue // bad row, keep going
//	    }
//	    if err != nil {
//	        return err // read failure
//	    }
//	    fmt.Println(rec.Timestamp, rec.Count)
//	}
//
// Records are written back in the canonical form with Write.
package recordio
