// Package caldate provides the calendar primitives used by the rate plan
// engine. All dates are ISO YYYY-MM-DD over the proleptic Gregorian
// calendar; a string like "2014-02-31" is rejected, never rolled over.
package caldate

import (
	"fmt"
	"regexp"
	"time"
)

var isoRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Date is a validated calendar day. The zero value is not a valid date;
// obtain one through Parse.
type Date struct {
	t time.Time
}

// Parse validates and converts an ISO date string. Years outside 1-9999
// and non-existing days of month are errors.
func Parse(s string) (Date, error) {
	if !isoRe.MatchString(s) {
		return Date{}, fmt.Errorf("invalid date (%s)", s)
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date (%s)", s)
	}
	if t.Year() < 1 || t.Year() > 9999 {
		return Date{}, fmt.Errorf("invalid date (%s)", s)
	}
	return Date{t: t}, nil
}

// IsValid reports whether s is a well-formed calendar date.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func (d Date) String() string {
	return d.t.Format("2006-01-02")
}

// IsZero reports whether d was never assigned a parsed date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the date n days after d (n >= 0).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Weekday returns the day of week with Sunday = 0 ... Saturday = 6.
func (d Date) Weekday() int {
	return int(d.t.Weekday())
}

// Diff returns the signed number of days from start to end.
func Diff(start, end Date) int {
	return int(end.t.Sub(start.t) / (24 * time.Hour))
}

// Between reports whether start <= check <= end (inclusive on both ends).
func Between(start, end, check Date) bool {
	return Diff(start, check) >= 0 && Diff(check, end) >= 0
}

// Overlaps reports whether the inclusive intervals [aStart,aEnd] and
// [bStart,bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return Between(aStart, aEnd, bStart) || Between(bStart, bEnd, aStart)
}
