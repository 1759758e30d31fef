package domain

import (
	"fmt"
	"time"
)

const displayLayout = "01/02/2006"

// ArchiveDate is a single calendar date on the archive site. All derived
// representations (display, directory name, upstream query) come from the
// same underlying value so they can never drift apart.
type ArchiveDate struct {
	t time.Time
}

// ParseArchiveDate parses the external MM/DD/YYYY representation.
func ParseArchiveDate(s string) (ArchiveDate, error) {
	t, err := time.Parse(displayLayout, s)
	if err != nil {
		return ArchiveDate{}, fmt.Errorf("invalid date %q, expected MM/DD/YYYY: %w", s, err)
	}
	return NewArchiveDate(t), nil
}

// NewArchiveDate truncates t to its calendar date in UTC.
func NewArchiveDate(t time.Time) ArchiveDate {
	y, m, d := t.Date()
	return ArchiveDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Display returns the MM/DD/YYYY form shown to users.
func (d ArchiveDate) Display() string { return d.t.Format(displayLayout) }

// DirName returns the MMDDYYYY form used for output directories.
func (d ArchiveDate) DirName() string { return d.t.Format("01022006") }

// QueryDate returns the YYYYMMDD form expected by upstream endpoints.
func (d ArchiveDate) QueryDate() string { return d.t.Format("20060102") }

func (d ArchiveDate) Time() time.Time { return d.t }

func (d ArchiveDate) Equal(o ArchiveDate) bool { return d.t.Equal(o.t) }

func (d ArchiveDate) Before(o ArchiveDate) bool { return d.t.Before(o.t) }

func (d ArchiveDate) After(o ArchiveDate) bool { return d.t.After(o.t) }

// AddDays returns the date n days later (or earlier for negative n).
func (d ArchiveDate) AddDays(n int) ArchiveDate {
	return ArchiveDate{t: d.t.AddDate(0, 0, n)}
}

// DatesBetween returns the inclusive daily sequence from start to end in
// ascending order. Callers must ensure start is not after end.
func DatesBetween(start, end ArchiveDate) []ArchiveDate {
	var dates []ArchiveDate
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

type dateSpecKind int

const (
	specTrailingYear dateSpecKind = iota
	specSingle
	specRange
)

// DateSpec selects the dates a download run covers: a single date, an
// inclusive range, or (the zero value) every date from today back exactly
// 365 days.
type DateSpec struct {
	kind       dateSpecKind
	start, end ArchiveDate
}

// SingleDate covers exactly one date.
func SingleDate(d ArchiveDate) DateSpec {
	return DateSpec{kind: specSingle, start: d, end: d}
}

// DateRange covers every date from start to end inclusive.
func DateRange(start, end ArchiveDate) DateSpec {
	return DateSpec{kind: specRange, start: start, end: end}
}

// TrailingYear covers today and the 365 days before it.
func TrailingYear() DateSpec {
	return DateSpec{kind: specTrailingYear}
}

// Expand validates the spec against today and returns the covered dates in
// ascending order. Range bounds after today or an inverted range yield an
// *InvalidRangeError.
func (s DateSpec) Expand(today ArchiveDate) ([]ArchiveDate, error) {
	switch s.kind {
	case specSingle:
		return []ArchiveDate{s.start}, nil
	case specRange:
		if s.start.After(today) || s.end.After(today) {
			return nil, &InvalidRangeError{Start: s.start, End: s.end, Reason: "bounds must not be after today"}
		}
		if s.start.After(s.end) {
			return nil, &InvalidRangeError{Start: s.start, End: s.end, Reason: "start date must not be after end date"}
		}
		return DatesBetween(s.start, s.end), nil
	default:
		return DatesBetween(today.AddDays(-365), today), nil
	}
}
