package statistics

import (
	"iter"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// DateOf truncates t to its calendar date, read in t's own location, and
// returns it as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive, ascending run of calendar dates.
type DateRange struct {
	first time.Time
	last  time.Time
}

// Days returns the calendar dates from start's date to end's date inclusive.
// When end's date precedes start's date the range is empty.
func Days(start, end time.Time) DateRange {
	return DateRange{first: DateOf(start), last: DateOf(end)}
}

// Len returns the number of dates in the range.
func (r DateRange) Len() int {
	if r.last.Before(r.first) {
		return 0
	}
	return int(dayNumber(r.last)-dayNumber(r.first)) + 1
}

// Index returns the offset of t's calendar date from the first date. It may
// be negative or past the end for dates outside the range.
func (r DateRange) Index(t time.Time) int {
	return int(dayNumber(DateOf(t)) - dayNumber(r.first))
}

// At returns the date at offset i.
func (r DateRange) At(i int) time.Time {
	return r.first.AddDate(0, 0, i)
}

// dayNumber counts days since the unix epoch for a UTC midnight. Subtracting
// two of these stays exact for any year, unlike time.Time.Sub.
func dayNumber(midnight time.Time) int64 {
	return midnight.Unix() / secondsPerDay
}

// All yields every (offset, date) pair in ascending order.
func (r DateRange) All() iter.Seq2[int, time.Time] {
	return func(yield func(int, time.Time) bool) {
		n := r.Len()
		for i := 0; i < n; i++ {
			if !yield(i, r.At(i)) {
				return
			}
		}
	}
}
